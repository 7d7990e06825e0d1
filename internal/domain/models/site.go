package models

// DefaultSiteName is shown in page titles and emails.
const DefaultSiteName = "Math Mastery"
