package packstream

// Placeholder struct signatures for the temporal/point type family. Spec §9
// calls these out as a version-2+ concern: the hook points (registration in
// knownSignatures, rejection in Pack) exist so a version-2 codec is a table
// swap, not a rewrite, but no encoder/decoder is implemented for them here.
const (
	dateSignature          = 'D'
	timeSignature          = 'T'
	localTimeSignature     = 't'
	localDateTimeSignature = 'd'
	dateTimeSignature      = 'F'
	durationSignature      = 'E'
	point2DSignature       = 'X'
	point3DSignature       = 'Y'
)

// Date, Time, LocalTime, LocalDateTime, DateTime, Duration, Point2D and
// Point3D exist only so that a caller attempting to encode one in version 1
// gets a concrete TypeNotSupportedInThisVersion error naming the type,
// rather than falling through to a generic "cannot pack" failure.
type (
	Date          struct{ Days int64 }
	Time          struct{ NanosSinceMidnight int64; OffsetSeconds int32 }
	LocalTime     struct{ NanosSinceMidnight int64 }
	LocalDateTime struct{ Seconds, Nanos int64 }
	DateTime      struct{ Seconds, Nanos int64; OffsetSeconds int32 }
	Duration      struct{ Months, Days, Seconds, Nanos int64 }
	Point2D       struct{ SRID int32; X, Y float64 }
	Point3D       struct{ SRID int32; X, Y, Z float64 }
)
