// Covid19DB - COVID-19 Dataset Loader
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/covid19db

package combined

// ResolvePopulation returns explicit when set, otherwise the population
// recorded for fips, otherwise nil.
func ResolvePopulation(explicit, fips *int64, fipsPop map[int64]int64) *int64 {
	if explicit != nil {
		v := *explicit
		return &v
	}
	if fips == nil {
		return nil
	}
	if pop, ok := fipsPop[*fips]; ok {
		return &pop
	}
	return nil
}

// RatePer100k returns explicit when set. Otherwise, with a non-zero
// population, it computes count (0 when nil) per 100,000 people.
// Without a usable population it returns nil.
func RatePer100k(explicit *float64, count *int64, population *int64) *float64 {
	if explicit != nil {
		v := *explicit
		return &v
	}
	if population == nil || *population == 0 {
		return nil
	}
	var n int64
	if count != nil {
		n = *count
	}
	rate := float64(n) * 100000.0 / float64(*population)
	return &rate
}
