// Package workload registers demonstration candidates with known running
// times. Importing it for side effects makes them available to the
// executor, in the parent and in every re-executed child.
package workload

import (
	"container/heap"
	"math"
	"time"

	"github.com/haskel/bigo/internal/executor"
)

// Workload is a registered candidate together with the class it is
// expected to be classified as.
type Workload struct {
	Name        string
	Expected    string
	Description string
	Fn          executor.Func
}

// Candidate returns the executor handle of w.
func (w Workload) Candidate() executor.Candidate {
	return executor.Candidate{Name: w.Name}
}

// sleepUnit is the time one unit of cost takes in the sleep workloads.
const (
	sleepUnit = time.Microsecond
	maxSleep  = time.Hour
)

// sink keeps computed values observable so loops are not optimized away.
var sink int

var all = []Workload{
	{"sleep/constant", "O(1)", "sleeps 10ms", scaled(func(float64) float64 { return 10000 })},
	{"sleep/log", "O(log n)", "sleeps 1ms * ln(n)", scaled(func(n float64) float64 { return 1000 * math.Log(n) })},
	{"sleep/sqrt", "O(sqrt(n))", "sleeps 100us * sqrt(n)", scaled(func(n float64) float64 { return 100 * math.Sqrt(n) })},
	{"sleep/linear", "O(n)", "sleeps 10us * n", scaled(func(n float64) float64 { return 10 * n })},
	{"sleep/nlogn", "O(n log n)", "sleeps 10us * n ln(n)", scaled(func(n float64) float64 { return 10 * n * math.Log(n) })},
	{"sleep/quadratic", "O(n^2)", "sleeps 1us * n^2", scaled(func(n float64) float64 { return n * n })},
	{"sleep/cubic", "O(n^3)", "sleeps 1us * n^3", scaled(func(n float64) float64 { return n * n * n })},
	{"fib/naive", "O(2^n)", "recursive Fibonacci", func(n int) { sink = fibNaive(n) }},
	{"fib/iterative", "O(n)", "iterative Fibonacci, repeated 1000 times", repeat(1000, func(n int) { sink = fibIterative(n) })},
	{"fib/memo", "O(n)", "memoized Fibonacci, repeated 1000 times", repeat(1000, func(n int) { sink = fibMemo(n, map[int]int{}) })},
	{"heap/push", "O(n log n)", "pushes n descending keys onto a min-heap", func(n int) { sink = pushDescending(n) }},
	{"loop/infinite", "", "never returns", func(int) { spin() }},
}

func init() {
	for _, w := range all {
		executor.Register(w.Name, w.Fn)
	}
}

// All returns the registered workloads in registration order.
func All() []Workload {
	out := make([]Workload, len(all))
	copy(out, all)
	return out
}

// Get returns the workload registered under name.
func Get(name string) (Workload, bool) {
	for _, w := range all {
		if w.Name == name {
			return w, true
		}
	}
	return Workload{}, false
}

// scaled sleeps cost(n) sleep units.
func scaled(cost func(n float64) float64) executor.Func {
	return func(n int) {
		units := cost(float64(n))
		if units <= 0 || math.IsNaN(units) {
			return
		}
		if units > float64(maxSleep/sleepUnit) {
			units = float64(maxSleep / sleepUnit)
		}
		time.Sleep(time.Duration(units) * sleepUnit)
	}
}

func repeat(times int, fn executor.Func) executor.Func {
	return func(n int) {
		for i := 0; i < times; i++ {
			fn(n)
		}
	}
}

func fibNaive(n int) int {
	if n < 2 {
		return n
	}
	return fibNaive(n-1) + fibNaive(n-2)
}

func fibIterative(n int) int {
	if n < 2 {
		return n
	}
	prev, cur := 0, 1
	for i := 2; i <= n; i++ {
		prev, cur = cur, prev+cur
	}
	return cur
}

func fibMemo(n int, memo map[int]int) int {
	if n < 2 {
		return n
	}
	if v, ok := memo[n]; ok {
		return v
	}
	v := fibMemo(n-1, memo) + fibMemo(n-2, memo)
	memo[n] = v
	return v
}

// minHeap implements heap.Interface over ints.
type minHeap []int

func (h minHeap) Len() int           { return len(h) }
func (h minHeap) Less(i, j int) bool { return h[i] < h[j] }
func (h minHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *minHeap) Push(x any) {
	*h = append(*h, x.(int))
}

func (h *minHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

// pushDescending pushes n, n-1, ..., 1 so that every push sifts to the
// root, and returns the minimum.
func pushDescending(n int) int {
	h := make(minHeap, 0, n)
	for i := n; i > 0; i-- {
		heap.Push(&h, i)
	}
	if h.Len() == 0 {
		return 0
	}
	return h[0]
}

func spin() {
	for {
		sink++
	}
}
