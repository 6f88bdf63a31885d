package models

import (
	"strconv"
	"strings"
)

// ResourceType is the kind of content a resource points at.
type ResourceType string

const (
	ResourceFile  ResourceType = "File"
	ResourceVideo ResourceType = "Video"
	ResourceLink  ResourceType = "Link"
)

// Resource is an item in the program's content library.
type Resource struct {
	ID           string       `json:"id"`
	Title        string       `json:"title" validate:"notblank,max=120"`
	Description  string       `json:"description" validate:"max=500"`
	Type         ResourceType `json:"type" validate:"oneof=File Video Link"`
	URL          string       `json:"url" validate:"required_if=Type Link,max=2048"`
	AssignedWeek *int         `json:"assignedWeek" validate:"omitempty,min=1,max=12"`
	Tags         []string     `json:"tags" validate:"dive,notblank"`
	UploadDate   string       `json:"uploadDate"`
}

// WeekLabel renders the assigned week or "General".
func (r *Resource) WeekLabel() string {
	if r.AssignedWeek == nil {
		return "General"
	}
	return "Week " + strconv.Itoa(*r.AssignedWeek)
}

// Matches reports whether the title or any tag contains term, ignoring case.
func (r *Resource) Matches(term string) bool {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return true
	}
	if strings.Contains(strings.ToLower(r.Title), term) {
		return true
	}
	for _, tag := range r.Tags {
		if strings.Contains(strings.ToLower(tag), term) {
			return true
		}
	}
	return false
}

// WeekPtr returns a pointer to week, for building resources.
func WeekPtr(week int) *int {
	return &week
}

// DefaultResources returns the content library the dashboard starts with.
func DefaultResources() []Resource {
	return []Resource{
		{ID: "res-1", Title: "Week 1: Leadership Foundations", Description: "Core principles of leadership.", Type: ResourceFile, URL: "/files/week1-guide.pdf", AssignedWeek: WeekPtr(1), Tags: []string{"core", "reading"}, UploadDate: "2023-08-25"},
		{ID: "res-2", Title: "Intro Video: The Why", Description: "Welcome video from the founder.", Type: ResourceVideo, URL: "https://vimeo.com/123456", AssignedWeek: WeekPtr(1), Tags: []string{"intro", "video"}, UploadDate: "2023-08-25"},
		{ID: "res-3", Title: "Week 2: Emotional Intelligence", Description: "Understanding EQ in the workplace.", Type: ResourceFile, URL: "/files/week2-eq.pdf", AssignedWeek: WeekPtr(2), Tags: []string{"core", "reading"}, UploadDate: "2023-09-01"},
		{ID: "res-4", Title: "General Program Syllabus", Description: "Full 12-week schedule and requirements.", Type: ResourceFile, URL: "/files/syllabus.docx", Tags: []string{"admin", "info"}, UploadDate: "2023-08-20"},
		{ID: "res-5", Title: "Guest Speaker Series: Simon Sinek", Description: "Recorded session from Oct 20th.", Type: ResourceLink, URL: "https://youtube.com/watch?v=xyz", AssignedWeek: WeekPtr(8), Tags: []string{"bonus"}, UploadDate: "2023-10-20"},
	}
}
