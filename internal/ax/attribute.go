package ax

import "strings"

// Attribute names an accessibility attribute of an element.
type Attribute string

const (
	AttrRole          Attribute = "AXRole"
	AttrSubrole       Attribute = "AXSubrole"
	AttrTitle         Attribute = "AXTitle"
	AttrFrame         Attribute = "AXFrame"
	AttrPosition      Attribute = "AXPosition"
	AttrSize          Attribute = "AXSize"
	AttrWindows       Attribute = "AXWindows"
	AttrMainWindow    Attribute = "AXMainWindow"
	AttrFocusedWindow Attribute = "AXFocusedWindow"
	AttrMain          Attribute = "AXMain"
	AttrFocused       Attribute = "AXFocused"
	AttrMinimized     Attribute = "AXMinimized"
	AttrFullScreen    Attribute = "AXFullScreen"
	AttrHidden        Attribute = "AXHidden"
	AttrFrontmost     Attribute = "AXFrontmost"
)

// knownAttributes maps each attribute to the value kind it holds.
var knownAttributes = map[Attribute]ValueKind{
	AttrRole:          KindString,
	AttrSubrole:       KindString,
	AttrTitle:         KindString,
	AttrFrame:         KindRect,
	AttrPosition:      KindPoint,
	AttrSize:          KindSize,
	AttrWindows:       KindElements,
	AttrMainWindow:    KindElement,
	AttrFocusedWindow: KindElement,
	AttrMain:          KindBool,
	AttrFocused:       KindBool,
	AttrMinimized:     KindBool,
	AttrFullScreen:    KindBool,
	AttrHidden:        KindBool,
	AttrFrontmost:     KindBool,
}

// ParseAttribute resolves an attribute by its AX name. The "AX" prefix is
// optional and matching is case-insensitive, so "size" and "AXSize" both work.
func ParseAttribute(s string) (Attribute, bool) {
	for attr := range knownAttributes {
		if equalFoldAX(string(attr), s) {
			return attr, true
		}
	}
	return "", false
}

// Kind reports the value kind the attribute holds, or KindInvalid for
// attributes the simulator does not know about.
func (a Attribute) Kind() ValueKind {
	return knownAttributes[a]
}

func (a Attribute) String() string { return string(a) }

// Notification names an accessibility notification.
type Notification string

const (
	WindowCreated        Notification = "AXWindowCreated"
	MainWindowChanged    Notification = "AXMainWindowChanged"
	FocusedWindowChanged Notification = "AXFocusedWindowChanged"
	ApplicationHidden    Notification = "AXApplicationHidden"
	ApplicationShown     Notification = "AXApplicationShown"
	Moved                Notification = "AXMoved"
	Resized              Notification = "AXResized"
	TitleChanged         Notification = "AXTitleChanged"
	WindowMiniaturized   Notification = "AXWindowMiniaturized"
	WindowDeminiaturized Notification = "AXWindowDeminiaturized"
	UIElementDestroyed   Notification = "AXUIElementDestroyed"
)

var knownNotifications = []Notification{
	WindowCreated,
	MainWindowChanged,
	FocusedWindowChanged,
	ApplicationHidden,
	ApplicationShown,
	Moved,
	Resized,
	TitleChanged,
	WindowMiniaturized,
	WindowDeminiaturized,
	UIElementDestroyed,
}

// ParseNotification resolves a notification by name, with the same leniency
// as ParseAttribute.
func ParseNotification(s string) (Notification, bool) {
	for _, n := range knownNotifications {
		if equalFoldAX(string(n), s) {
			return n, true
		}
	}
	return "", false
}

// Notifications returns every notification kind the simulator can emit.
func Notifications() []Notification {
	out := make([]Notification, len(knownNotifications))
	copy(out, knownNotifications)
	return out
}

// routesToApplication reports whether a notification emitted for a window is
// matched against the owning application's subscriptions.
func (n Notification) routesToApplication() bool {
	switch n {
	case WindowCreated, MainWindowChanged, FocusedWindowChanged:
		return true
	default:
		return false
	}
}

func (n Notification) String() string { return string(n) }

func equalFoldAX(name, s string) bool {
	if len(s) >= 2 && strings.EqualFold(s[:2], "ax") {
		s = s[2:]
	}
	return strings.EqualFold(strings.TrimPrefix(name, "AX"), s)
}
