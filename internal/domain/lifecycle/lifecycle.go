// Package lifecycle holds shared process-lifecycle constants.
package lifecycle

import "time"

// DefaultTimeout bounds graceful shutdown of deliveries.
const DefaultTimeout = 10 * time.Second
