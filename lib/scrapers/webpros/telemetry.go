package webpros

import "attendance-backend/lib/telemetry"

var tracer = telemetry.Tracer("attendance.lib.scrapers.webpros")
