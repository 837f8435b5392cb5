package worker

import "strings"

const (
	reminderTemplate          = "appointment_reminder"
	reminderTemplateNoService = "appointment_reminder_no_service"
)

func defaultTitle(lang string) string {
	if lang == "en" {
		return "Appointment Reminder"
	}
	return "Randevu Hatırlatması"
}

func defaultTemplate(templateID, lang string) string {
	if lang == "en" {
		switch templateID {
		case reminderTemplate:
			return "Reminder: your {service} appointment at {tenant} is on {date} at {time}."
		case reminderTemplateNoService:
			return "Reminder: your appointment at {tenant} is on {date} at {time}."
		}
	}
	switch templateID {
	case reminderTemplate:
		return "Hatırlatma: {tenant} işletmesindeki {service} randevunuz {date} tarihinde saat {time}."
	case reminderTemplateNoService:
		return "Hatırlatma: {tenant} işletmesindeki randevunuz {date} tarihinde saat {time}."
	}
	return ""
}

// renderTemplate replaces each {key} in template with vars[key]. Unknown
// placeholders are left as they are.
func renderTemplate(template string, vars map[string]string) string {
	pairs := make([]string, 0, len(vars)*2)
	for key, value := range vars {
		pairs = append(pairs, "{"+key+"}", value)
	}
	return strings.NewReplacer(pairs...).Replace(template)
}
