// Package panelhandler implements the HTTP handlers of the host key
// publication panel.
//
// Form actions (generate, publish, cancel) collect their notifications in an
// interfaces.Notifications, hand them to the flash store and redirect to the
// status page, which drains the store and reconciles the background publish
// job before rendering.
package panelhandler
