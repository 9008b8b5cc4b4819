package service

// Version is the application version, overridable at build time via
// -ldflags "-X signtusk/internal/service.Version=...".
var Version = "1.0.0"
