// Package config loads the loader configuration file and sets up logging.
//
// Configuration is read from a YAML file and overridden by environment
// variables prefixed with CUSTOM_ALBUMS, with dots in keys replaced by
// underscores (CUSTOM_ALBUMS_DECODE_CHUNK_SIZE=8192).
package config
