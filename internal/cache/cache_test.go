package cache

import (
	"fmt"
	"sync"
	"testing"
)

func TestBounded_PutGet(t *testing.T) {
	c := NewBounded(10)
	c.Put("weather today", "Sunny and 75F.")
	got, ok := c.Get("weather today")
	if !ok || got != "Sunny and 75F." {
		t.Errorf("Get = %q, %v", got, ok)
	}
	if _, ok := c.Get("missing"); ok {
		t.Error("Get on missing key should report !ok")
	}
}

func TestBounded_EvictsOldestInserted(t *testing.T) {
	c := NewBounded(3)
	c.Put("a", "1")
	c.Put("b", "2")
	c.Put("c", "3")
	c.Put("d", "4") // evicts "a"

	if _, ok := c.Get("a"); ok {
		t.Error("oldest entry should have been evicted")
	}
	for _, k := range []string{"b", "c", "d"} {
		if _, ok := c.Get(k); !ok {
			t.Errorf("entry %q should survive", k)
		}
	}
	if c.Len() != 3 {
		t.Errorf("Len = %d, want 3", c.Len())
	}
}

func TestBounded_OverwriteKeepsInsertionSlot(t *testing.T) {
	c := NewBounded(2)
	c.Put("a", "1")
	c.Put("b", "2")
	c.Put("a", "updated") // not a new insertion
	c.Put("c", "3")       // evicts "a" (still oldest), not "b"

	if _, ok := c.Get("a"); ok {
		t.Error("overwritten entry keeps its slot and is evicted first")
	}
	if v, _ := c.Get("b"); v != "2" {
		t.Errorf("b = %q, want 2", v)
	}
}

func TestBounded_DefaultCapacity(t *testing.T) {
	c := NewBounded(0)
	if c.capacity != DefaultCapacity {
		t.Errorf("capacity = %d, want %d", c.capacity, DefaultCapacity)
	}
}

func TestBounded_Clear(t *testing.T) {
	c := NewBounded(5)
	c.Put("a", "1")
	c.Clear()
	if c.Len() != 0 {
		t.Errorf("Len after Clear = %d", c.Len())
	}
	c.Put("b", "2") // still usable
	if _, ok := c.Get("b"); !ok {
		t.Error("cache unusable after Clear")
	}
}

func TestBounded_ConcurrentAccess(t *testing.T) {
	c := NewBounded(50)
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				key := fmt.Sprintf("k%d", j%60)
				c.Put(key, "v")
				c.Get(key)
			}
		}(i)
	}
	wg.Wait()
	if c.Len() > 50 {
		t.Errorf("Len = %d exceeds capacity", c.Len())
	}
}

func TestContinuations_TakeIsSingleUse(t *testing.T) {
	s := NewContinuations()
	s.Put("abc123", "the full response text")

	full, ok := s.Take("abc123")
	if !ok || full != "the full response text" {
		t.Fatalf("first Take = %q, %v", full, ok)
	}
	if _, ok := s.Take("abc123"); ok {
		t.Error("second Take should find nothing")
	}
}

func TestContinuations_PutOverwrites(t *testing.T) {
	s := NewContinuations()
	s.Put("abc123", "old")
	s.Put("abc123", "new")
	full, _ := s.Take("abc123")
	if full != "new" {
		t.Errorf("Take = %q, want new", full)
	}
}

func TestContinuations_ConcurrentTakeSingleWinner(t *testing.T) {
	s := NewContinuations()
	s.Put("abc123", "full text")

	var wg sync.WaitGroup
	wins := make(chan struct{}, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, ok := s.Take("abc123"); ok {
				wins <- struct{}{}
			}
		}()
	}
	wg.Wait()
	close(wins)

	n := 0
	for range wins {
		n++
	}
	if n != 1 {
		t.Errorf("%d goroutines received the continuation, want exactly 1", n)
	}
}

func TestContinuations_Clear(t *testing.T) {
	s := NewContinuations()
	s.Put("a", "1")
	s.Put("b", "2")
	s.Clear()
	if s.Len() != 0 {
		t.Errorf("Len after Clear = %d", s.Len())
	}
}
