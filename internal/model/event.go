package model

// Event records one notification delivered to an observer callback.
type Event struct {
	Seq          int    `yaml:"seq"             json:"seq"`
	Observer     string `yaml:"observer"        json:"observer"`
	Notification string `yaml:"notification"    json:"notification"`
	ElementID    int    `yaml:"element"         json:"element"`
	Ref          string `yaml:"ref,omitempty"   json:"ref,omitempty"`
	Role         string `yaml:"role,omitempty"  json:"role,omitempty"`
	Title        string `yaml:"title,omitempty" json:"title,omitempty"`
	PID          int    `yaml:"pid,omitempty"   json:"pid,omitempty"`
}
