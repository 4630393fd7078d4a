package core

// Level orders log messages by severity.
type Level uint8

const (
	LevelTrace Level = iota
	LevelDebug
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelTrace:
		return "TRACE"
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	default:
		return "ERROR"
	}
}

// LogSink receives formatted log lines. Platform code sets it, e.g. to a UART.
type LogSink func(Level, string)

// EventRecord captures an interrupt-side event for post-mortem analysis
type EventRecord struct {
	Kind     uint8  // Event kind code
	Instance uint8  // Peripheral instance
	Tick     uint32 // Low word of the tick clock
	Value1   uint32 // Context-dependent value
	Value2   uint32 // Context-dependent value
}

// Event kind codes
const (
	EvtIRQ      = 1 // vector entered
	EvtWake     = 2 // waker fired
	EvtArm      = 3 // events enabled by a future
	EvtDisarm   = 4 // events disabled on completion or cancel
	EvtDMAStart = 5
	EvtDMAStop  = 6
)

const EventRingSize = 32

var (
	logSink  LogSink = func(Level, string) {} // No-op by default
	logLevel         = LevelInfo

	eventRing     [EventRingSize]EventRecord
	eventRingHead uint8
	eventsEnabled = true
)

// SetLogSink sets the platform-specific log output function.
// A nil sink silences logging.
func SetLogSink(sink LogSink) {
	if sink == nil {
		sink = func(Level, string) {}
	}
	logSink = sink
}

// SetLogLevel drops messages below l.
func SetLogLevel(l Level) {
	logLevel = l
}

// Log writes msg at level l. Compiled out under the nolog build tag.
func Log(l Level, msg string) {
	if logEnabled && l >= logLevel {
		logSink(l, msg)
	}
}

// Debug, Info and Warn are shorthands for Log.
func Debug(msg string) { Log(LevelDebug, msg) }
func Info(msg string)  { Log(LevelInfo, msg) }
func Warn(msg string)  { Log(LevelWarn, msg) }

// RecordEvent stores an event in the ring. Safe from interrupt handlers.
func RecordEvent(kind, instance uint8, v1, v2 uint32) {
	if !eventsEnabled {
		return
	}
	state := disableInterrupts()
	idx := eventRingHead
	eventRing[idx] = EventRecord{
		Kind:     kind,
		Instance: instance,
		Tick:     uint32(loadTicks()),
		Value1:   v1,
		Value2:   v2,
	}
	eventRingHead = (idx + 1) % EventRingSize
	restoreInterrupts(state)
}

// SetEventRecording turns the event ring on or off.
func SetEventRecording(on bool) {
	eventsEnabled = on
}

// Events returns a copy of the ring, oldest first, skipping empty slots.
func Events() []EventRecord {
	state := disableInterrupts()
	defer restoreInterrupts(state)

	out := make([]EventRecord, 0, EventRingSize)
	start := eventRingHead
	for i := uint8(0); i < EventRingSize; i++ {
		evt := eventRing[(start+i)%EventRingSize]
		if evt.Kind == 0 {
			continue // Empty slot
		}
		out = append(out, evt)
	}
	return out
}

// DumpEvents writes the event ring to the log sink.
func DumpEvents() {
	Log(LevelInfo, "[EVENTS] === ring dump ===")
	for _, evt := range Events() {
		var name string
		switch evt.Kind {
		case EvtIRQ:
			name = "IRQ"
		case EvtWake:
			name = "WAKE"
		case EvtArm:
			name = "ARM"
		case EvtDisarm:
			name = "DISARM"
		case EvtDMAStart:
			name = "DMA_START"
		case EvtDMAStop:
			name = "DMA_STOP"
		default:
			name = "UNKNOWN"
		}
		Log(LevelInfo, "[EVENTS] "+name+
			" inst="+itoa(int(evt.Instance))+
			" tick="+utoa(evt.Tick)+
			" v1="+htoa(evt.Value1)+
			" v2="+htoa(evt.Value2))
	}
}

// ClearEvents empties the ring
func ClearEvents() {
	state := disableInterrupts()
	defer restoreInterrupts(state)
	for i := range eventRing {
		eventRing[i] = EventRecord{}
	}
	eventRingHead = 0
}
