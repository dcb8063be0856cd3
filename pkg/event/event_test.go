package event_test

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shashiranjanraj/storefront/pkg/event"
)

func TestFireInOrder(t *testing.T) {
	d := event.New()
	var got []string
	d.Listen("signed_in", func(p interface{}) { got = append(got, "a:"+p.(string)) })
	d.Listen("signed_in", func(p interface{}) { got = append(got, "b:"+p.(string)) })
	d.Listen("other", func(p interface{}) { got = append(got, "other") })

	d.Fire("signed_in", "u1")
	assert.Equal(t, []string{"a:u1", "b:u1"}, got)
}

func TestUnsubscribe(t *testing.T) {
	d := event.New()
	var calls int32
	off := d.Listen("e", func(interface{}) { atomic.AddInt32(&calls, 1) })
	keep := d.Listen("e", func(interface{}) { atomic.AddInt32(&calls, 10) })
	defer keep()

	off()
	off()
	d.Fire("e", nil)

	assert.Equal(t, int32(10), atomic.LoadInt32(&calls))
	assert.Equal(t, 1, d.Count("e"))
}

func TestFireAsyncAndWait(t *testing.T) {
	d := event.New()
	var calls int32
	for i := 0; i < 5; i++ {
		d.Listen("e", func(interface{}) { atomic.AddInt32(&calls, 1) })
	}
	d.FireAsync("e", nil)
	d.Wait()
	assert.Equal(t, int32(5), atomic.LoadInt32(&calls))
}

func TestFlush(t *testing.T) {
	d := event.New()
	d.Listen("e", func(interface{}) { t.Fatal("flushed listener called") })
	d.Flush()
	d.Fire("e", nil)
	assert.Equal(t, 0, d.Count("e"))
}
