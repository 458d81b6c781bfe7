package domain

// Lesson is read-only catalog metadata for one lesson page.
type Lesson struct {
	Slug  string `json:"slug" yaml:"slug"`
	Title string `json:"title" yaml:"title"`
	Tags  []Tag  `json:"tags" yaml:"tags"`
}

// Quiz is read-only catalog metadata for one quiz.
type Quiz struct {
	ID    string `json:"id" yaml:"id"`
	Title string `json:"title" yaml:"title"`
	Tags  []Tag  `json:"tags" yaml:"tags"`
}

// Catalog lists the lessons and quizzes available to the learner, in
// display order.
type Catalog struct {
	Lessons []Lesson `json:"lessons" yaml:"lessons"`
	Quizzes []Quiz   `json:"quizzes" yaml:"quizzes"`
}

// Lesson looks up a lesson by slug.
func (c Catalog) Lesson(slug string) (Lesson, bool) {
	for _, l := range c.Lessons {
		if l.Slug == slug {
			return l, true
		}
	}
	return Lesson{}, false
}

// LessonEntry is a lesson joined with the learner's progress on it.
type LessonEntry struct {
	Lesson
	Started   bool
	Completed bool
}

// QuizEntry is a quiz joined with the learner's progress on it.
type QuizEntry struct {
	Quiz
	Completed bool
}

func hasTag(tags []Tag, tag Tag) bool {
	for _, t := range tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Covers reports whether the lesson is tagged with tag.
func (l Lesson) Covers(tag Tag) bool { return hasTag(l.Tags, tag) }

// Covers reports whether the quiz is tagged with tag.
func (q Quiz) Covers(tag Tag) bool { return hasTag(q.Tags, tag) }
