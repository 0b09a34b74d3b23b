// Package ax is an in-memory stand-in for the macOS Accessibility API.
//
// A Tree owns the element ID counter and the main queue. Applications and
// windows built from it keep their attributes in per-element synchronized
// stores, keep the application's main window and each window's AXMain flag
// consistent, and (for the Emitting variants) translate attribute writes into
// notifications. Observers subscribe to (element, notification) pairs and
// receive matching notifications on the tree's main queue, one callback per
// event.
//
// Elements can be invalidated to simulate the underlying UI object going away
// while a client still holds a reference to it.
package ax
