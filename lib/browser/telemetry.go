package browser

import "attendance-backend/lib/telemetry"

var tracer = telemetry.Tracer("attendance.lib.browser")
