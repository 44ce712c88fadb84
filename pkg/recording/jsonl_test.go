package recording_test

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/require"

	"github.com/flamefold/flamefold/pkg/event"
	"github.com/flamefold/flamefold/pkg/recording"
)

const sampleRecording = `{"type":"jdk.ExecutionSample","start_nanos":1000,"stack":[{"function":"leaf"},{"function":"root"}]}
{"type":"cpu","start_nanos":2000}

{"type":"jdk.FileRead","start_nanos":3000,"duration_nanos":5000000,"bytes":128,"stack":[{"function":"read"}]}
`

func drain(t *testing.T, src recording.Source) []event.Event {
	t.Helper()
	var events []event.Event
	for {
		e, err := src.Next()
		if err == io.EOF {
			return events
		}
		require.NoError(t, err)
		events = append(events, e)
	}
}

func TestJSONLSource(t *testing.T) {
	src, err := recording.NewJSONLSource(strings.NewReader(sampleRecording), recording.CompressionAuto)
	require.NoError(t, err)
	defer src.Close()

	events := drain(t, src)
	require.Len(t, events, 3)

	require.Equal(t, "jdk.ExecutionSample", events[0].Type)
	require.Equal(t, int64(1000), events[0].StartNanos)
	require.Len(t, events[0].Stack, 2)
	require.Equal(t, "leaf", events[0].Stack[0].Function)

	require.Equal(t, "cpu", events[1].Type)
	require.Empty(t, events[1].Stack)

	require.Equal(t, int64(5000000), events[2].DurationNanos)
	require.Equal(t, int64(128), events[2].Bytes)

	// Idempotent EOF.
	_, err = src.Next()
	require.Equal(t, io.EOF, err)
}

func TestJSONLSourceCompressed(t *testing.T) {
	compress := map[string]func(*testing.T) []byte{
		"gzip": func(t *testing.T) []byte {
			var buf bytes.Buffer
			zw := gzip.NewWriter(&buf)
			_, err := zw.Write([]byte(sampleRecording))
			require.NoError(t, err)
			require.NoError(t, zw.Close())
			return buf.Bytes()
		},
		"zstd": func(t *testing.T) []byte {
			var buf bytes.Buffer
			zw, err := zstd.NewWriter(&buf)
			require.NoError(t, err)
			_, err = zw.Write([]byte(sampleRecording))
			require.NoError(t, err)
			require.NoError(t, zw.Close())
			return buf.Bytes()
		},
	}

	for name, makeInput := range compress {
		for _, mode := range []recording.Compression{recording.CompressionAuto, recording.Compression(name)} {
			t.Run(fmt.Sprintf("%s/%s", name, mode), func(t *testing.T) {
				src, err := recording.NewJSONLSource(bytes.NewReader(makeInput(t)), mode)
				require.NoError(t, err)
				defer src.Close()
				require.Len(t, drain(t, src), 3)
			})
		}
	}
}

func TestJSONLSourceEndNanosFallback(t *testing.T) {
	raw := `{"type":"io","start_nanos":1000,"end_nanos":4000}
{"type":"io","start_nanos":1000,"duration_nanos":500,"end_nanos":4000}
`
	src, err := recording.NewJSONLSource(strings.NewReader(raw), recording.CompressionNone)
	require.NoError(t, err)
	defer src.Close()

	events := drain(t, src)
	require.Len(t, events, 2)
	// The end time fills in a missing duration but never overrides one.
	require.Equal(t, int64(3000), events[0].DurationNanos)
	require.Equal(t, int64(500), events[1].DurationNanos)
}

func TestJSONLSourceMalformed(t *testing.T) {
	for i, test := range []struct {
		raw    string
		errBit string
	}{
		{raw: "{\"type\":\"cpu\"}\nnot json\n", errBit: "line 2"},
		{raw: "{\"start_nanos\":5}\n", errBit: "missing event type"},
		{raw: "{\"type\":\"cpu\",\"bytes\":\"many\"}\n", errBit: "line 1"},
	} {
		t.Run(fmt.Sprintf("malformed/%d", i), func(t *testing.T) {
			src, err := recording.NewJSONLSource(strings.NewReader(test.raw), recording.CompressionNone)
			require.NoError(t, err)
			defer src.Close()
			for {
				_, err = src.Next()
				if err != nil {
					break
				}
			}
			require.Error(t, err)
			require.NotEqual(t, io.EOF, err)
			require.Contains(t, err.Error(), test.errBit)
		})
	}
}

func TestParseCompression(t *testing.T) {
	c, err := recording.ParseCompression("")
	require.NoError(t, err)
	require.Equal(t, recording.CompressionAuto, c)

	_, err = recording.ParseCompression("lz4")
	require.Error(t, err)
}

func TestOpenReaderForcedMismatch(t *testing.T) {
	// Forcing gzip on plain text is an input error.
	_, err := recording.OpenReader(strings.NewReader("plain text"), recording.CompressionGzip)
	require.Error(t, err)

	// Forcing none passes compressed bytes through untouched.
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err = zw.Write([]byte("payload"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	rc, err := recording.OpenReader(bytes.NewReader(buf.Bytes()), recording.CompressionNone)
	require.NoError(t, err)
	raw, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.Equal(t, buf.Bytes(), raw)
}

func TestFilter(t *testing.T) {
	raw := `{"type":"jdk.ExecutionSample","start_nanos":1000}
{"type":"jdk.JavaExceptionThrow","start_nanos":1500}
{"type":"cpu","start_nanos":2000}
{"type":"cpu","start_nanos":9000}
`
	src, err := recording.NewJSONLSource(strings.NewReader(raw), recording.CompressionNone)
	require.NoError(t, err)

	filter := recording.NewFilter(src, event.CategoryCPU, recording.TimeRange{
		StartNanos: 500,
		EndNanos:   5000,
	})
	events := drain(t, filter)
	require.Len(t, events, 2)
	require.Equal(t, int64(1000), events[0].StartNanos)
	require.Equal(t, int64(2000), events[1].StartNanos)
	require.Equal(t, uint64(4), filter.Seen())
	require.Equal(t, uint64(2), filter.Kept())
}

func TestTimeRangeContains(t *testing.T) {
	window := recording.TimeRange{StartNanos: 1000, EndNanos: 2000}
	for i, test := range []struct {
		e        event.Event
		expected bool
	}{
		{event.Event{StartNanos: 1500}, true},
		{event.Event{StartNanos: 500}, false},
		// Intersection counts, not containment.
		{event.Event{StartNanos: 500, DurationNanos: 600}, true},
		{event.Event{StartNanos: 2500}, false},
		{event.Event{StartNanos: 1999, DurationNanos: 5000}, true},
	} {
		t.Run(fmt.Sprintf("window/%d", i), func(t *testing.T) {
			require.Equal(t, test.expected, window.Contains(test.e))
		})
	}

	require.True(t, recording.TimeRange{}.IsZero())
	require.True(t, recording.TimeRange{}.Contains(event.Event{StartNanos: 42}))
}

func TestSummarize(t *testing.T) {
	raw := `{"type":"jdk.ExecutionSample","start_nanos":1000}
{"type":"jdk.ExecutionSample","start_nanos":4000}
{"type":"jdk.FileRead","start_nanos":2000,"duration_nanos":3000}
{"type":"custom.Event","start_nanos":1500}
`
	src, err := recording.NewJSONLSource(strings.NewReader(raw), recording.CompressionNone)
	require.NoError(t, err)

	details, err := recording.Summarize(src)
	require.NoError(t, err)
	require.Equal(t, uint64(4), details.EventCount)
	require.Equal(t, int64(1000), details.StartNanos)
	require.Equal(t, int64(5000), details.EndNanos)
	require.Equal(t, []recording.TypeCount{
		{Type: "custom.Event", Count: 1},
		{Type: "jdk.ExecutionSample", Category: "cpu", Count: 2},
		{Type: "jdk.FileRead", Category: "io", Count: 1},
	}, details.Types)
}
