package snapshot

// CPUScale is 100 on Windows, where the raw unit is a fraction of one core.
const CPUScale = 100
