// Package stats maintains streaming aggregates keyed by category,
// in constant space per key: no sample is ever retained.
package stats

import "sort"

// Key is the category tuple a bucket or counter aggregates under.
// Group names the family ("clogging", "kills", …); Name the member.
type Key struct {
	Group string `json:"group"`
	Name  string `json:"name"`
}

// Bucket is the streaming aggregate for one key. Mean is derived on
// read; a bucket is never created with Count == 0.
type Bucket struct {
	Count int     `json:"count"`
	Sum   float64 `json:"sum"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
}

// Mean returns Sum/Count, or 0 for an empty bucket.
func (b Bucket) Mean() float64 {
	if b.Count == 0 {
		return 0
	}
	return b.Sum / float64(b.Count)
}

// KeyedBucket is one (key, bucket) row of the sorted view.
type KeyedBucket struct {
	Key    Key
	Bucket Bucket
}

// KeyedCount is one (key, count) row of the sorted counter view.
type KeyedCount struct {
	Key   Key
	Count int
}

// Aggregator owns one bucket per sampled key and one counter per
// count-only key. Callers decide which composite keys exist.
type Aggregator struct {
	buckets  map[Key]*Bucket
	counters map[Key]int
}

// NewAggregator creates an empty Aggregator.
func NewAggregator() *Aggregator {
	return &Aggregator{
		buckets:  make(map[Key]*Bucket),
		counters: make(map[Key]int),
	}
}

// AddSample folds one value into the key's bucket in O(1).
func (a *Aggregator) AddSample(key Key, v float64) {
	b, ok := a.buckets[key]
	if !ok {
		a.buckets[key] = &Bucket{Count: 1, Sum: v, Min: v, Max: v}
		return
	}
	b.Count++
	b.Sum += v
	if v < b.Min {
		b.Min = v
	}
	if v > b.Max {
		b.Max = v
	}
}

// Increment bumps a count-only category with no numeric sample.
func (a *Aggregator) Increment(key Key) {
	a.counters[key]++
}

// BucketFor returns the bucket for key, and whether any sample exists.
func (a *Aggregator) BucketFor(key Key) (Bucket, bool) {
	b, ok := a.buckets[key]
	if !ok {
		return Bucket{}, false
	}
	return *b, true
}

// CountFor returns the counter for key.
func (a *Aggregator) CountFor(key Key) int {
	return a.counters[key]
}

// Buckets returns all sampled aggregates sorted by (group, name).
func (a *Aggregator) Buckets() []KeyedBucket {
	out := make([]KeyedBucket, 0, len(a.buckets))
	for key, b := range a.buckets {
		out = append(out, KeyedBucket{Key: key, Bucket: *b})
	}
	sort.Slice(out, func(i, j int) bool { return less(out[i].Key, out[j].Key) })
	if len(out) == 0 {
		return nil
	}
	return out
}

// Counters returns all counters sorted by (group, name).
func (a *Aggregator) Counters() []KeyedCount {
	out := make([]KeyedCount, 0, len(a.counters))
	for key, n := range a.counters {
		out = append(out, KeyedCount{Key: key, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return less(out[i].Key, out[j].Key) })
	if len(out) == 0 {
		return nil
	}
	return out
}

func less(a, b Key) bool {
	if a.Group != b.Group {
		return a.Group < b.Group
	}
	return a.Name < b.Name
}
