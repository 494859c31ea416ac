package password

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Params controls Argon2id hashing cost. Memory is in KiB as required by
// argon2.IDKey.
type Params struct {
	MemoryKiB   uint32
	Iterations  uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

// DefaultParams returns a baseline tuned so one hash completes in tens of
// milliseconds on commodity hardware: slow enough to resist brute force,
// fast enough that login cannot be used as a denial-of-service lever.
func DefaultParams() Params {
	return Params{
		MemoryKiB:   64 * 1024, // 64 MiB
		Iterations:  2,
		Parallelism: 2,
		SaltLength:  16,
		KeyLength:   32,
	}
}

// ParamsFromEnv loads hashing cost from environment variables, falling back
// to DefaultParams.
//
// Env surface:
//   - RAVEN_ARGON2_MEMORY_KIB
//   - RAVEN_ARGON2_ITERATIONS
//   - RAVEN_ARGON2_PARALLELISM
func ParamsFromEnv() (Params, error) {
	p := DefaultParams()

	if v, ok := os.LookupEnv("RAVEN_ARGON2_MEMORY_KIB"); ok {
		u, err := parseU32(v, 8*1024, 1024*1024) // 8 MiB .. 1 GiB
		if err != nil {
			return Params{}, fmt.Errorf("RAVEN_ARGON2_MEMORY_KIB: %w", err)
		}
		p.MemoryKiB = u
	}

	if v, ok := os.LookupEnv("RAVEN_ARGON2_ITERATIONS"); ok {
		u, err := parseU32(v, 1, 20)
		if err != nil {
			return Params{}, fmt.Errorf("RAVEN_ARGON2_ITERATIONS: %w", err)
		}
		p.Iterations = u
	}

	if v, ok := os.LookupEnv("RAVEN_ARGON2_PARALLELISM"); ok {
		u, err := parseU32(v, 1, 8)
		if err != nil {
			return Params{}, fmt.Errorf("RAVEN_ARGON2_PARALLELISM: %w", err)
		}
		p.Parallelism = uint8(u) // #nosec G115 -- bounded to [1..8] above.
	}

	return p, nil
}

func parseU32(s string, minVal, maxVal uint32) (uint32, error) {
	u64, err := strconv.ParseUint(strings.TrimSpace(s), 10, 32)
	if err != nil {
		return 0, fmt.Errorf("not an unsigned integer")
	}
	u := uint32(u64)
	if u < minVal || u > maxVal {
		return 0, fmt.Errorf("out of range [%d..%d]", minVal, maxVal)
	}
	return u, nil
}
