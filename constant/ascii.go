package constant

// AsciiArtLogo is the application's ASCII art banner shown in the root help output.
const AsciiArtLogo = `
  █▄▀ ▄▀█ █▀ █░█ ▄▀█
  █░█ █▀█ ▄█ █▀█ █▀█
`
