// Package config loads, normalizes, and validates marquee configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, loads an optional .env file, and honours
// environment fallbacks such as MARQUEE_LISTING_URL and the TWILIO_* voice
// credentials. The Config type centralizes every knob the monitor and CLI
// need so the listing endpoint, match rules, and outbound channels are
// discovered in one pass.
//
// Always obtain settings through this package so downstream code receives
// trimmed values, canonical log formats, and clear validation errors. Core
// matching packages never read the environment themselves; they receive an
// immutable options value built from Config.
package config
