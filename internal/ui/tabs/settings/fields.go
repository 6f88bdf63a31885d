package settings

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/j-veylop/leap-dashboard-tui/internal/services/settings"
)

// field is one editable line of the configuration form.
type field struct {
	section string
	label   string
	long    bool
	get     func(p *settings.ProgramSettings) string
	set     func(p *settings.ProgramSettings, v string) error
}

func textField(section, label string, long bool, ptr func(p *settings.ProgramSettings) *string) field {
	return field{
		section: section,
		label:   label,
		long:    long,
		get:     func(p *settings.ProgramSettings) string { return *ptr(p) },
		set: func(p *settings.ProgramSettings, v string) error {
			*ptr(p) = strings.TrimSpace(v)
			return nil
		},
	}
}

func intField(section, label string, ptr func(p *settings.ProgramSettings) *int) field {
	return field{
		section: section,
		label:   label,
		get:     func(p *settings.ProgramSettings) string { return strconv.Itoa(*ptr(p)) },
		set: func(p *settings.ProgramSettings, v string) error {
			n, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil {
				return fmt.Errorf("%s must be a whole number", label)
			}
			*ptr(p) = n
			return nil
		},
	}
}

// configFields lists the form in display order.
func configFields() []field {
	return []field{
		textField("Schedule", "Content release day", false, func(p *settings.ProgramSettings) *string { return &p.Schedule.ContentReleaseDay }),
		textField("Schedule", "Content release time", false, func(p *settings.ProgramSettings) *string { return &p.Schedule.ContentReleaseTime }),
		textField("Schedule", "Accountability nudge day", false, func(p *settings.ProgramSettings) *string { return &p.Schedule.NudgeDay }),
		textField("Schedule", "Accountability nudge time", false, func(p *settings.ProgramSettings) *string { return &p.Schedule.NudgeTime }),

		intField("Thresholds", "Passing grade (%)", func(p *settings.ProgramSettings) *int { return &p.Thresholds.PassingGrade }),
		intField("Thresholds", "Low engagement warning (%)", func(p *settings.ProgramSettings) *int { return &p.Thresholds.LowEngagementWarning }),
		intField("Thresholds", "Auto-flag after missed weeks", func(p *settings.ProgramSettings) *int { return &p.Thresholds.AutoFlagMissedWeeks }),
		intField("Thresholds", "Accountability minimum check-ins", func(p *settings.ProgramSettings) *int { return &p.Thresholds.AccountabilityMinimum }),
		intField("Thresholds", "Certification threshold (%)", func(p *settings.ProgramSettings) *int { return &p.Policy.CertificationThreshold }),

		textField("Templates", "Weekly release", true, func(p *settings.ProgramSettings) *string { return &p.Templates.WeeklyRelease }),
		textField("Templates", "Accountability nudge", true, func(p *settings.ProgramSettings) *string { return &p.Templates.AccountabilityNudge }),
		textField("Templates", "Graduation congrats", true, func(p *settings.ProgramSettings) *string { return &p.Templates.GraduationCongrats }),
	}
}
