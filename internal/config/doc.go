// Cadence - Social Playlist Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cadence

/*
Package config provides layered configuration for Cadence.

Sources are applied in order, later ones overriding earlier ones:

 1. Struct defaults (defaultConfig)
 2. A YAML file: $CONFIG_PATH, ./cadence.yaml, ./cadence.yml or
    /etc/cadence/config.yaml
 3. CADENCE_* environment variables, mapped explicitly in envTransformFunc

Slice settings (grid values, CORS origins) accept comma-separated strings
from the environment:

	CADENCE_GRID_EPOCHS=5,10,20
	CADENCE_GRID_LEARNING_RATES=0.002,0.005

The result is checked with validator struct tags and the cross-field
rules in Validate before it is returned.
*/
package config
