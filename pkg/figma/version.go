package figma

// Version is the release of figma-happyx, reported by the CLI and sent as the server's build label.
const Version = "0.3.0"
