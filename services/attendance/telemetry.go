package attendanced

import "attendance-backend/lib/telemetry"

var tracer = telemetry.Tracer("attendance.services.attendance")
var meter = telemetry.Meter("attendance.services.attendance")
