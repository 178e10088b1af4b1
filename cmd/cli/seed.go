package main

import (
	"fmt"
	"math/rand/v2"
	"time"

	"amq/internal/common"
)

var fruits = []string{
	"apple", "banana", "cherry", "durian", "elderberry", "fig", "grapefruit",
	"honeydew", "imbe", "jackfruit", "kiwi", "lime", "mango", "nectarine",
	"orange", "peach", "quince", "raspberry", "strawberry", "tangerine",
	"ugni", "voavanga", "watermelon", "ximenia", "yuzu", "zarzamora",
}

// seed inserts x rounds of fruit<i> items, continuing from the last index
// seeded into this filter. It stops at the first full-table error.
func (s *session) seed(x int) {
	start := time.Now()
	count := 0
	startIndex := s.seedIndex

	// Randomize the order of fruits for more realistic workload
	shuffled := make([]string, len(fruits))
	copy(shuffled, fruits)
	rand.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	for i := 0; i < x; i++ {
		for _, fruit := range shuffled {
			item := fmt.Sprintf("%s%d", fruit, s.seedIndex)
			if err := s.f.Insert([]byte(item)); err != nil {
				if isFull(err) {
					common.LogDuration(start, "seed stopped after %d items: %v", count, err)
					return
				}
				fmt.Printf("seed error: %v\n", err)
				continue
			}
			count++
		}
		s.seedIndex++
	}

	avgPerItem := time.Since(start) / time.Duration(max(count, 1))
	common.LogDuration(start, "seeded %d items (%d * %d, index %d-%d) - %v/item",
		count, len(fruits), x, startIndex, s.seedIndex-1, avgPerItem)
}
