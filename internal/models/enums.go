package models

// ProjectState represents the completion state of a project
type ProjectState string

const (
	StateNotStarted ProjectState = "not_started"
	StateInProgress ProjectState = "in_progress"
	StateCompleted  ProjectState = "completed"
)

// Valid returns true if the state is one of the known values
func (s ProjectState) Valid() bool {
	return s == StateNotStarted || s == StateInProgress || s == StateCompleted
}

// Next returns the state that follows in the cyclic toggle order:
// not_started -> in_progress -> completed -> not_started
func (s ProjectState) Next() ProjectState {
	switch s {
	case StateNotStarted:
		return StateInProgress
	case StateInProgress:
		return StateCompleted
	default:
		return StateNotStarted
	}
}

// Label returns the display label for the state
func (s ProjectState) Label() string {
	switch s {
	case StateNotStarted:
		return "Not Started"
	case StateInProgress:
		return "In Progress"
	case StateCompleted:
		return "Completed"
	default:
		return string(s)
	}
}

// Color returns the color tag used by UI layers for the state
func (s ProjectState) Color() string {
	switch s {
	case StateNotStarted:
		return "gray"
	case StateInProgress:
		return "blue"
	case StateCompleted:
		return "green"
	default:
		return "gray"
	}
}

// ResourceType classifies a learning resource link
type ResourceType string

const (
	ResourceArticle       ResourceType = "article"
	ResourceVideo         ResourceType = "video"
	ResourceBook          ResourceType = "book"
	ResourceCourse        ResourceType = "course"
	ResourceDocumentation ResourceType = "documentation"
	ResourceRepository    ResourceType = "repository"
	ResourceTool          ResourceType = "tool"
	ResourceOther         ResourceType = "other"
)

// ResourceTypes lists all valid resource types in display order
var ResourceTypes = []ResourceType{
	ResourceArticle,
	ResourceVideo,
	ResourceBook,
	ResourceCourse,
	ResourceDocumentation,
	ResourceRepository,
	ResourceTool,
	ResourceOther,
}

// Valid returns true if the type is one of the known values
func (t ResourceType) Valid() bool {
	for _, rt := range ResourceTypes {
		if t == rt {
			return true
		}
	}
	return false
}

// Label returns the display label for the resource type
func (t ResourceType) Label() string {
	switch t {
	case ResourceArticle:
		return "Article"
	case ResourceVideo:
		return "Video"
	case ResourceBook:
		return "Book"
	case ResourceCourse:
		return "Course"
	case ResourceDocumentation:
		return "Documentation"
	case ResourceRepository:
		return "Repository"
	case ResourceTool:
		return "Tool"
	case ResourceOther:
		return "Other"
	default:
		return string(t)
	}
}

// Color returns the color tag for the resource type
func (t ResourceType) Color() string {
	switch t {
	case ResourceArticle:
		return "cyan"
	case ResourceVideo:
		return "red"
	case ResourceBook:
		return "amber"
	case ResourceCourse:
		return "purple"
	case ResourceDocumentation:
		return "blue"
	case ResourceRepository:
		return "slate"
	case ResourceTool:
		return "teal"
	default:
		return "gray"
	}
}

// NoteType classifies a project note
type NoteType string

const (
	NoteGeneral  NoteType = "note"
	NoteIdea     NoteType = "idea"
	NoteQuestion NoteType = "question"
	NoteBlocker  NoteType = "blocker"
)

// NoteTypes lists all valid note types in display order
var NoteTypes = []NoteType{NoteGeneral, NoteIdea, NoteQuestion, NoteBlocker}

// Valid returns true if the type is one of the known values
func (t NoteType) Valid() bool {
	for _, nt := range NoteTypes {
		if t == nt {
			return true
		}
	}
	return false
}

// Label returns the display label for the note type
func (t NoteType) Label() string {
	switch t {
	case NoteGeneral:
		return "Note"
	case NoteIdea:
		return "Idea"
	case NoteQuestion:
		return "Question"
	case NoteBlocker:
		return "Blocker"
	default:
		return string(t)
	}
}

// Color returns the color tag for the note type
func (t NoteType) Color() string {
	switch t {
	case NoteGeneral:
		return "gray"
	case NoteIdea:
		return "yellow"
	case NoteQuestion:
		return "blue"
	case NoteBlocker:
		return "red"
	default:
		return "gray"
	}
}
