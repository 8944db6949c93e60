package dto

// UpdateSettingsRequest carries the flags to change. Omitted flags keep their
// current value.
type UpdateSettingsRequest map[string]bool
