// Package config handles configuration loading and defaults.
//
// Configuration is loaded from multiple sources in priority order:
// 1. Built-in defaults
// 2. User config file (~/.portfolio/portfolio.toml or OS-specific config directory)
// 3. Project config file (portfolio.toml or .portfolio.toml in the working directory)
// 4. Environment variables (PORTFOLIO_* and the dashboard variables API_URL, API_KEY, ...)
// 5. CLI flags
//
// Each level overrides the previous one, so CLI flags take precedence.
//
// User-level config locations:
// - ~/.portfolio/portfolio.toml (preferred)
// - Windows: %APPDATA%\portfolio\portfolio.toml
// - macOS: ~/Library/Application Support/portfolio/portfolio.toml
// - Linux/BSD: $XDG_CONFIG_HOME/portfolio/portfolio.toml or ~/.config/portfolio/portfolio.toml
//
// Project-level config locations (overrides user config):
// - ./portfolio.toml (preferred)
// - ./.portfolio.toml
package config
