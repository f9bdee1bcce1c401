// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package metrics defines the Prometheus collectors for the vote pipeline
// and exposes them at /metrics. Collectors live on the default registry.
package metrics
