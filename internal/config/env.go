package config

import "os"

func defaultString(dst *string, v string) {
	if *dst == "" {
		*dst = v
	}
}

func mergeString(dst *string, overlay string) {
	if overlay != "" {
		*dst = overlay
	}
}

// envString overwrites dst with the named variable when it is set and non-empty.
func envString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}
