package model

// Window represents an application window.
type Window struct {
	App       string `yaml:"app"                 json:"app"`
	PID       int    `yaml:"pid"                 json:"pid"`
	Title     string `yaml:"title"               json:"title"`
	ID        int    `yaml:"id"                  json:"id"`
	Bounds    [4]int `yaml:"bounds"              json:"bounds"`
	Focused   bool   `yaml:"focused,omitempty"   json:"focused,omitempty"`
	Main      bool   `yaml:"main,omitempty"      json:"main,omitempty"`
	Minimized bool   `yaml:"minimized,omitempty" json:"minimized,omitempty"`
}

// App summarizes one running application.
type App struct {
	Name      string `yaml:"name"                json:"name"`
	PID       int    `yaml:"pid"                 json:"pid"`
	Windows   int    `yaml:"windows"             json:"windows"`
	Frontmost bool   `yaml:"frontmost,omitempty" json:"frontmost,omitempty"`
	Hidden    bool   `yaml:"hidden,omitempty"    json:"hidden,omitempty"`
}
