package herald

// VERSION is the release version, stamped at build time via
// -ldflags "-X github.com/heraldbot/herald.VERSION=v1.2.3".
var VERSION = "n/a"
