package sync

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

// Collection names as the backend knows them.
const (
	CollectionTools     = "tools"
	CollectionVideos    = "videos"
	CollectionNotes     = "notes"
	CollectionCourses   = "courses"
	CollectionTutorials = "tutorials"
	CollectionResources = "resources"
)

const (
	CourseNotStarted = "Not Started"
	CourseInProgress = "In Progress"
	CourseCompleted  = "Completed"
)

type ToolFields struct {
	Name        string `json:"name"`
	URL         string `json:"url"`
	Category    string `json:"category"`
	Description string `json:"description"`
	ImageURL    string `json:"image_url,omitempty"`
}

type VideoFields struct {
	Title        string `json:"title"`
	URL          string `json:"url"`
	Platform     string `json:"platform"`
	Channel      string `json:"channel"`
	ThumbnailURL string `json:"thumbnail_url,omitempty"`
	Duration     int    `json:"duration,omitempty"`
	Description  string `json:"description,omitempty"`
}

type NoteFields struct {
	Title   string   `json:"title"`
	Content string   `json:"content"`
	Tags    []string `json:"tags,omitempty"`
}

type CourseFields struct {
	Title       string `json:"title"`
	Platform    string `json:"platform"`
	Progress    int    `json:"progress"`
	Status      string `json:"status"`
	Description string `json:"description,omitempty"`
	URL         string `json:"url,omitempty"`
}

type TutorialFields struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Source      string `json:"source"`
	Description string `json:"description,omitempty"`
}

type ResourceFields struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Type        string `json:"type"`
	Description string `json:"description"`
	Author      string `json:"author,omitempty"`
}

func NewToolStore(remote Remote, ownerID uuid.UUID, logger *slog.Logger) *Store[ToolFields] {
	return NewStore[ToolFields](remote, CollectionTools, ownerID, logger)
}

func NewVideoStore(remote Remote, ownerID uuid.UUID, logger *slog.Logger) *Store[VideoFields] {
	return NewStore[VideoFields](remote, CollectionVideos, ownerID, logger)
}

func NewNoteStore(remote Remote, ownerID uuid.UUID, logger *slog.Logger) *Store[NoteFields] {
	return NewStore[NoteFields](remote, CollectionNotes, ownerID, logger)
}

func NewCourseStore(remote Remote, ownerID uuid.UUID, logger *slog.Logger) *Store[CourseFields] {
	return NewStore[CourseFields](remote, CollectionCourses, ownerID, logger)
}

func NewTutorialStore(remote Remote, ownerID uuid.UUID, logger *slog.Logger) *Store[TutorialFields] {
	return NewStore[TutorialFields](remote, CollectionTutorials, ownerID, logger)
}

func NewResourceStore(remote Remote, ownerID uuid.UUID, logger *slog.Logger) *Store[ResourceFields] {
	return NewStore[ResourceFields](remote, CollectionResources, ownerID, logger)
}

// SetCourseStatus moves a course to a new status optimistically, the same
// policy as a favorite toggle.
func SetCourseStatus(ctx context.Context, store *Store[CourseFields], id uuid.UUID, status string) error {
	return store.MutateOptimistic(ctx, id,
		func(f *CourseFields) { f.Status = status },
		map[string]string{"status": status})
}

// SetCourseProgress updates the progress percentage optimistically. Hitting
// 100 also completes the course, matching the dashboard behavior.
func SetCourseProgress(ctx context.Context, store *Store[CourseFields], id uuid.UUID, progress int) error {
	if progress < 0 {
		progress = 0
	}
	if progress > 100 {
		progress = 100
	}

	patch := map[string]any{"progress": progress}
	if progress == 100 {
		patch["status"] = CourseCompleted
	}

	return store.MutateOptimistic(ctx, id,
		func(f *CourseFields) {
			f.Progress = progress
			if progress == 100 {
				f.Status = CourseCompleted
			}
		}, patch)
}

// Canned search sources, one per collection, with the fields the global
// search bar matches on.

func ToolSearchSource(store *Store[ToolFields]) Searcher {
	return NewSource(store,
		func(r Record[ToolFields]) []string {
			return []string{r.Fields.Name, r.Fields.Category, r.Fields.Description}
		},
		func(r Record[ToolFields]) Result {
			return Result{
				Collection: CollectionTools,
				ID:         r.ID,
				Title:      r.Fields.Name,
				Snippet:    r.Fields.Category,
				TargetView: "/tools",
			}
		})
}

func VideoSearchSource(store *Store[VideoFields]) Searcher {
	return NewSource(store,
		func(r Record[VideoFields]) []string {
			return []string{r.Fields.Title, r.Fields.Channel, r.Fields.Description}
		},
		func(r Record[VideoFields]) Result {
			return Result{
				Collection: CollectionVideos,
				ID:         r.ID,
				Title:      r.Fields.Title,
				Snippet:    r.Fields.Channel,
				TargetView: "/videos",
			}
		})
}

func NoteSearchSource(store *Store[NoteFields]) Searcher {
	return NewSource(store,
		func(r Record[NoteFields]) []string {
			fields := []string{r.Fields.Title, r.Fields.Content}
			return append(fields, r.Fields.Tags...)
		},
		func(r Record[NoteFields]) Result {
			return Result{
				Collection: CollectionNotes,
				ID:         r.ID,
				Title:      r.Fields.Title,
				Snippet:    snippet(r.Fields.Content),
				TargetView: "/notes",
			}
		})
}

func CourseSearchSource(store *Store[CourseFields]) Searcher {
	return NewSource(store,
		func(r Record[CourseFields]) []string {
			return []string{r.Fields.Title, r.Fields.Platform, r.Fields.Description}
		},
		func(r Record[CourseFields]) Result {
			return Result{
				Collection: CollectionCourses,
				ID:         r.ID,
				Title:      r.Fields.Title,
				Snippet:    r.Fields.Platform,
				TargetView: "/courses",
			}
		})
}

func TutorialSearchSource(store *Store[TutorialFields]) Searcher {
	return NewSource(store,
		func(r Record[TutorialFields]) []string {
			return []string{r.Fields.Title, r.Fields.Source, r.Fields.Description}
		},
		func(r Record[TutorialFields]) Result {
			return Result{
				Collection: CollectionTutorials,
				ID:         r.ID,
				Title:      r.Fields.Title,
				Snippet:    r.Fields.Source,
				TargetView: "/tutorials",
			}
		})
}

func ResourceSearchSource(store *Store[ResourceFields]) Searcher {
	return NewSource(store,
		func(r Record[ResourceFields]) []string {
			return []string{r.Fields.Title, r.Fields.Author, r.Fields.Description}
		},
		func(r Record[ResourceFields]) Result {
			return Result{
				Collection: CollectionResources,
				ID:         r.ID,
				Title:      r.Fields.Title,
				Snippet:    r.Fields.Type,
				TargetView: "/resources",
			}
		})
}

// Canned stat sources with the group-by fields the dashboard shows.

func ToolStatSource(store *Store[ToolFields]) StatSource {
	return NewStatSource(store, map[string]func(ToolFields) string{
		"category": func(f ToolFields) string { return f.Category },
	})
}

func VideoStatSource(store *Store[VideoFields]) StatSource {
	return NewStatSource(store, map[string]func(VideoFields) string{
		"platform": func(f VideoFields) string { return f.Platform },
	})
}

func NoteStatSource(store *Store[NoteFields]) StatSource {
	return NewStatSource(store, nil)
}

func CourseStatSource(store *Store[CourseFields]) StatSource {
	return NewStatSource(store, map[string]func(CourseFields) string{
		"status": func(f CourseFields) string { return f.Status },
	})
}

func TutorialStatSource(store *Store[TutorialFields]) StatSource {
	return NewStatSource(store, map[string]func(TutorialFields) string{
		"source": func(f TutorialFields) string { return f.Source },
	})
}

func ResourceStatSource(store *Store[ResourceFields]) StatSource {
	return NewStatSource(store, map[string]func(ResourceFields) string{
		"type": func(f ResourceFields) string { return f.Type },
	})
}

func snippet(s string) string {
	const max = 80
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
