package internal

// Version is the telephone release version
const Version = "0.1.0"
