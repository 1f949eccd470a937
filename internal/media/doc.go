// Package media turns the three ways a user can supply a clothing photo
// (file picker, drag and drop, camera) into one validated image payload.
//
// Sources are a closed set of variants that all funnel into Acquire. The
// camera path either delegates to a native capture command or drives a live
// video device through a CaptureSession, whose Close stops every acquired
// track no matter how the session ends.
package media
