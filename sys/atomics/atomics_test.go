package atomics

import (
	"sync"
	"testing"
)

func TestCompareExchange32(t *testing.T) {
	var word int32 = 5

	expected := int32(5)
	if !CompareExchangeStrong32(&word, &expected, 9) {
		t.Fatal("expected exchange to succeed")
	}
	if word != 9 {
		t.Fatalf("word = %d, want 9", word)
	}

	expected = 5
	if CompareExchangeStrong32(&word, &expected, 11) {
		t.Fatal("expected exchange to fail on stale value")
	}
	if expected != 9 {
		t.Errorf("failed exchange reported %d, want observed value 9", expected)
	}
	if word != 9 {
		t.Errorf("failed exchange modified word to %d", word)
	}
}

func TestCompareExchange64(t *testing.T) {
	var word int64 = 1 << 40

	expected := int64(1 << 40)
	if !CompareExchangeStrongAcquire64(&word, &expected, -3) {
		t.Fatal("expected acquire exchange to succeed")
	}
	expected = 0
	if CompareExchangeStrongRelease64(&word, &expected, 7) {
		t.Fatal("expected release exchange to fail")
	}
	if expected != -3 {
		t.Errorf("observed %d, want -3", expected)
	}
}

func TestAcquireReleaseVariants32(t *testing.T) {
	var word int32
	expected := int32(0)
	if !CompareExchangeStrongRelease32(&word, &expected, 1) {
		t.Fatal("release exchange failed")
	}
	expected = 1
	if !CompareExchangeStrongAcquire32(&word, &expected, 2) {
		t.Fatal("acquire exchange failed")
	}
	if Load32(&word) != 2 {
		t.Errorf("word = %d, want 2", Load32(&word))
	}
}

func TestFetchAddSubReturnOldValue(t *testing.T) {
	var w32 int32 = 10
	if old := FetchAdd32(&w32, 3); old != 10 {
		t.Errorf("FetchAdd32 returned %d, want 10", old)
	}
	if old := FetchSub32(&w32, 5); old != 13 {
		t.Errorf("FetchSub32 returned %d, want 13", old)
	}
	if w32 != 8 {
		t.Errorf("w32 = %d, want 8", w32)
	}

	var w64 int64 = 100
	if old := FetchAdd64(&w64, 1<<33); old != 100 {
		t.Errorf("FetchAdd64 returned %d, want 100", old)
	}
	if old := FetchSub64(&w64, 1<<33); old != 100+1<<33 {
		t.Errorf("FetchSub64 returned %d", old)
	}
	if Load64(&w64) != 100 {
		t.Errorf("w64 = %d, want 100", w64)
	}
}

func TestLoadStore(t *testing.T) {
	var w32 int32
	var w64 int64
	Store32(&w32, -1)
	Store64(&w64, -1<<50)
	if Load32(&w32) != -1 || Load64(&w64) != -1<<50 {
		t.Fatalf("load after store mismatch: %d %d", w32, w64)
	}
}

func TestBarriersAreCallable(t *testing.T) {
	MB()
	RMB()
	WMB()
	ISync()
	if !HaveMemBarrier {
		t.Error("every backend provides a memory barrier")
	}
	if Backend == "" {
		t.Error("backend name is empty")
	}
}

func TestConcurrentFetchAdd(t *testing.T) {
	const workers = 8
	const perWorker = 10000

	var counter int64
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				FetchAdd64(&counter, 1)
			}
		}()
	}
	wg.Wait()

	if got := Load64(&counter); got != workers*perWorker {
		t.Fatalf("counter = %d, want %d", got, workers*perWorker)
	}
}

// Racing exchanges on one word: each transition is won by exactly one
// goroutine and losers always see the value that beat them.
func TestConcurrentCompareExchangeTransitions(t *testing.T) {
	const workers = 8
	const target = 20000

	var word int32
	wins := make([]int, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			expected := Load32(&word)
			for expected < target {
				prev := expected
				if CompareExchangeStrong32(&word, &expected, expected+1) {
					wins[id]++
					expected = prev + 1
					continue
				}
				if expected == prev {
					t.Errorf("failed exchange did not report a new value")
					return
				}
			}
		}(i)
	}
	wg.Wait()

	total := 0
	for _, w := range wins {
		total += w
	}
	if total != target {
		t.Fatalf("successful transitions = %d, want %d", total, target)
	}
	if word != target {
		t.Fatalf("word = %d, want %d", word, target)
	}
}
