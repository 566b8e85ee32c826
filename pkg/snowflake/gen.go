// Package snowflake implements a lock-free sortable unique id generator.
//
// An id is 63 bits: 42 bits of millisecond timestamp, 10 bits of machine id
// and 12 bits of sequence. Ids generated by a single generator are strictly
// monotonic.
package snowflake

import (
	"fmt"
	"sync/atomic"
	"time"
)

const (
	epoch = 1491696000000 // 2017-04-09T00:00:00Z, in milliseconds

	serverBits   = 10
	sequenceBits = 12
	timeBits     = 42

	serverShift = sequenceBits
	timeShift   = sequenceBits + serverBits

	serverMax    = ^(-1 << serverBits)
	sequenceMask = ^(-1 << sequenceBits)
	timeMask     = ^(-1 << timeBits)
)

// Generator produces ids for a single machine id.
type Generator struct {
	state   uint64
	machine uint64
}

// New returns a generator for the given machine id. It panics if the id is
// outside [0, 1023].
func New(machineID int) *Generator {
	if machineID < 0 || machineID > serverMax {
		panic(fmt.Errorf("invalid machine id; must be 0 ≤ id < %d", serverMax))
	}
	return &Generator{
		state:   0,
		machine: uint64(machineID << serverShift),
	}
}

// MachineID returns the machine id this generator was built with.
func (g *Generator) MachineID() int {
	return int(g.machine >> serverShift)
}

// Next returns the next id. It is safe for concurrent use.
func (g *Generator) Next() uint64 {
	var state uint64

	// we attempt 100 times to update the millisecond part of the state
	// and increment the sequence atomically. each attempt is approx ~30ns
	// so we spend around ~3µs total.
	for i := 0; i < 100; i++ {
		t := now()
		current := atomic.LoadUint64(&g.state)
		currentTime := current >> timeShift & timeMask
		currentSeq := current & sequenceMask

		// this sequence of conditionals ensures a monotonically increasing
		// state.
		switch {
		// if our time is in the future, use that with a zero sequence
		case t > currentTime:
			state = t << timeShift

		// we now know that our time is at or before the current time.
		// if we're at the maximum sequence, bump to the next millisecond
		case currentSeq == sequenceMask:
			state = (currentTime + 1) << timeShift

		// otherwise, increment the sequence.
		default:
			state = current + 1
		}

		if atomic.CompareAndSwapUint64(&g.state, current, state) {
			break
		}

		state = 0
	}

	// since we failed 100 times, there's high contention. bail out of the
	// loop to bound the time we'll spend in this method and just add one to
	// the counter. this can cause duplicate sequences, but not duplicate ids.
	if state == 0 {
		state = atomic.AddUint64(&g.state, 1)
	}

	return state | g.machine
}

// NextString returns the next id as a base-63 encoded, sortable string.
func (g *Generator) NextString() string {
	var s [11]byte
	encode(&s, g.Next())
	return string(s[:])
}

const digits = "0123456789" +
	"ABCDEFGHIJKLMNOPQRSTUVWXYZ" +
	"_" +
	"abcdefghijklmnopqrstuvwxyz" +
	"~"

func encode(s *[11]byte, n uint64) {
	s[10], n = digits[n&0x3f], n>>6
	s[9], n = digits[n&0x3f], n>>6
	s[8], n = digits[n&0x3f], n>>6
	s[7], n = digits[n&0x3f], n>>6
	s[6], n = digits[n&0x3f], n>>6
	s[5], n = digits[n&0x3f], n>>6
	s[4], n = digits[n&0x3f], n>>6
	s[3], n = digits[n&0x3f], n>>6
	s[2], n = digits[n&0x3f], n>>6
	s[1], n = digits[n&0x3f], n>>6
	s[0] = digits[n&0x3f]
}

func now() uint64 {
	return uint64(time.Now().UnixNano()/1e6 - epoch)
}
