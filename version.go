package archsynth

// Version is overridden at build time with -ldflags "-X github.com/aretw0/archsynth.Version=...".
var Version = "dev"
