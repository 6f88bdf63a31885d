package settings

import (
	"errors"
	"fmt"
	"strings"

	"github.com/j-veylop/leap-dashboard-tui/internal/services/metrics"
	"github.com/j-veylop/leap-dashboard-tui/internal/validation"
)

// Schedule controls when automated reminders go out.
type Schedule struct {
	ContentReleaseDay  string `json:"contentReleaseDay" validate:"weekday"`
	ContentReleaseTime string `json:"contentReleaseTime" validate:"clock"`
	NudgeDay           string `json:"nudgeDay" validate:"weekday"`
	NudgeTime          string `json:"nudgeTime" validate:"clock"`
}

// Thresholds are the program's completion and engagement rules.
type Thresholds struct {
	PassingGrade          int `json:"passingGrade" validate:"min=50,max=100"`
	LowEngagementWarning  int `json:"lowEngagementWarning" validate:"min=0,max=80"`
	AutoFlagMissedWeeks   int `json:"autoFlagMissedWeeks" validate:"min=1,max=12"`
	AccountabilityMinimum int `json:"accountabilityMinimum" validate:"min=0,max=12"`
}

// Templates are the WhatsApp message bodies. They accept {name}, {week} and {topic}.
type Templates struct {
	WeeklyRelease       string `json:"weeklyRelease" validate:"notblank,max=1000"`
	AccountabilityNudge string `json:"accountabilityNudge" validate:"notblank,max=1000"`
	GraduationCongrats  string `json:"graduationCongrats" validate:"notblank,max=1000"`
}

// ProgramSettings is everything an administrator can configure.
type ProgramSettings struct {
	Schedule   Schedule       `json:"schedule"`
	Thresholds Thresholds     `json:"thresholds"`
	Templates  Templates      `json:"templates"`
	Policy     metrics.Policy `json:"policy"`
	Version    int            `json:"version,omitempty"`
}

// Defaults returns the settings a new installation starts with.
func Defaults() ProgramSettings {
	return ProgramSettings{
		Schedule: Schedule{
			ContentReleaseDay:  "Monday",
			ContentReleaseTime: "09:00",
			NudgeDay:           "Thursday",
			NudgeTime:          "14:00",
		},
		Thresholds: Thresholds{
			PassingGrade:          80,
			LowEngagementWarning:  50,
			AutoFlagMissedWeeks:   2,
			AccountabilityMinimum: 4,
		},
		Templates: Templates{
			WeeklyRelease:       "Hi {name}! 🚀 Week {week} content is now live in Google Classroom. This week we focus on {topic}. Let's go! - Leap Team",
			AccountabilityNudge: "Hi {name}, we noticed you haven't checked in for Week {week} yet. Remember, consistency is key! Need help? Reply here.",
			GraduationCongrats:  "Congratulations {name}! 🎉 You have officially completed the Leap Leadership Program. Your certificate is attached.",
		},
		Policy:  metrics.DefaultPolicy(),
		Version: 1,
	}
}

// Validate checks field ranges and the metrics policy.
func (p *ProgramSettings) Validate() error {
	var errs []error
	if err := validation.Struct(p); err != nil {
		errs = append(errs, err)
	}
	if err := p.Policy.Validate(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Diff describes what changed between two settings, one line per field.
func Diff(old, updated ProgramSettings) []string {
	var changes []string
	add := func(format string, args ...any) {
		changes = append(changes, fmt.Sprintf(format, args...))
	}

	if old.Thresholds.PassingGrade != updated.Thresholds.PassingGrade {
		add("Changed passing grade threshold from %d%% to %d%%", old.Thresholds.PassingGrade, updated.Thresholds.PassingGrade)
	}
	if old.Thresholds.LowEngagementWarning != updated.Thresholds.LowEngagementWarning {
		add("Changed low engagement warning from %d%% to %d%%", old.Thresholds.LowEngagementWarning, updated.Thresholds.LowEngagementWarning)
	}
	if old.Thresholds.AutoFlagMissedWeeks != updated.Thresholds.AutoFlagMissedWeeks {
		add("Changed auto-flag after missed weeks from %d to %d", old.Thresholds.AutoFlagMissedWeeks, updated.Thresholds.AutoFlagMissedWeeks)
	}
	if old.Thresholds.AccountabilityMinimum != updated.Thresholds.AccountabilityMinimum {
		add("Changed accountability minimum from %d to %d check-ins", old.Thresholds.AccountabilityMinimum, updated.Thresholds.AccountabilityMinimum)
	}

	if old.Schedule.ContentReleaseDay != updated.Schedule.ContentReleaseDay || old.Schedule.ContentReleaseTime != updated.Schedule.ContentReleaseTime {
		add("Moved content release from %s %s to %s %s",
			old.Schedule.ContentReleaseDay, old.Schedule.ContentReleaseTime,
			updated.Schedule.ContentReleaseDay, updated.Schedule.ContentReleaseTime)
	}
	if old.Schedule.NudgeDay != updated.Schedule.NudgeDay || old.Schedule.NudgeTime != updated.Schedule.NudgeTime {
		add("Moved accountability nudge from %s %s to %s %s",
			old.Schedule.NudgeDay, old.Schedule.NudgeTime,
			updated.Schedule.NudgeDay, updated.Schedule.NudgeTime)
	}

	if old.Templates.WeeklyRelease != updated.Templates.WeeklyRelease {
		add("Edited weekly release template")
	}
	if old.Templates.AccountabilityNudge != updated.Templates.AccountabilityNudge {
		add("Edited accountability nudge template")
	}
	if old.Templates.GraduationCongrats != updated.Templates.GraduationCongrats {
		add("Edited graduation template")
	}

	if old.Policy != updated.Policy {
		add("Updated engagement policy (weights %.2f/%.2f, levels %.0f/%.0f, flag below %d%%/%d%%, certificate at %d%%)",
			updated.Policy.CompletionWeight, updated.Policy.EngagementWeight,
			updated.Policy.HighThreshold, updated.Policy.MediumThreshold,
			updated.Policy.FlagCompletionBelow, updated.Policy.FlagEngagementBelow,
			updated.Policy.CertificationThreshold)
	}

	return changes
}

// Summary joins a diff into a single audit detail line.
func Summary(changes []string) string {
	if len(changes) == 0 {
		return "Saved settings without changes"
	}
	return strings.Join(changes, "; ")
}
