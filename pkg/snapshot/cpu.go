package snapshot

// ScaleCPU converts a raw CPU reading into the percent figure that gets
// logged. The factor is fixed per target platform at build time.
//
// Neither backend has a platform quirk of its own: both measure percent of
// one core and hand it out in rawUnit, so on Windows Sample.CPU is a fraction
// of a core. CPUScale only fixes that raw unit; the logged figure is percent
// of one core on every platform.
func ScaleCPU(raw float32) float32 { return raw * CPUScale }

// rawUnit is what one full core reads as before scaling.
const rawUnit = 100 / CPUScale
