package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"runtime"
	"time"

	"github.com/wdm0006/surveyframe/pkg/frame"
	"github.com/wdm0006/surveyframe/pkg/session"
	std "github.com/wdm0006/surveyframe/pkg/transform/standardize"
)

var species = []string{" Bos taurus", "Ovis aries ", "Capra hircus", "Sus scrofa"}

// genRecords builds synthetic submissions: a nested farm object and a repeat
// group of animals per record.
func genRecords(n, maxGroup int, missp float64, rnd *rand.Rand) []*frame.Object {
	out := make([]*frame.Object, n)
	for i := range out {
		rec := frame.NewObject().
			Set("_id", frame.Int(int64(i))).
			Set("ID", frame.String(fmt.Sprintf("F%06d", i))).
			Set("data_coleta", frame.String(time.Date(2024, 1, 1+rnd.Intn(365), 0, 0, 0, 0, time.UTC).Format("2006-01-02")))
		farm := frame.NewObject().
			Set("nome", frame.String(fmt.Sprintf("Fazenda %d", rnd.Intn(100)))).
			Set("area", frame.Float(rnd.Float64()*500))
		rec.Set("fazenda", frame.ObjectValue(farm))
		group := make([]*frame.Object, rnd.Intn(maxGroup+1))
		for g := range group {
			a := frame.NewObject().Set("especie", frame.String(species[rnd.Intn(len(species))]))
			if rnd.Float64() >= missp {
				a.Set("idade", frame.Int(int64(rnd.Intn(15))))
			}
			group[g] = a
		}
		rec.Set("animais", frame.ArrayValue(group))
		out[i] = rec
	}
	return out
}

type blackholeSink struct{ writes, rows int }

func (b *blackholeSink) Write(f *frame.Frame) error {
	b.writes++
	b.rows = f.Rows()
	return nil
}
func (b *blackholeSink) Close() error { return nil }

func main() {
	var (
		records  = flag.Int("records", 200_000, "submissions to generate")
		maxGroup = flag.Int("group", 4, "maximum repeat group size")
		missp    = flag.Float64("missing", 0.05, "probability of a missing age")
		jsonOut  = flag.Bool("json", false, "emit JSON summary")
		seed     = flag.Int64("seed", 42, "random seed")
	)
	flag.Parse()

	recs := genRecords(*records, *maxGroup, *missp, rand.New(rand.NewSource(*seed)))
	sink := &blackholeSink{}
	s := session.New(session.Options{Sink: sink})

	// Warm up
	runtime.GC()
	time.Sleep(100 * time.Millisecond)

	var msBefore, msAfter runtime.MemStats
	runtime.ReadMemStats(&msBefore)
	start := time.Now()
	ctx := context.Background()
	if err := s.Load(ctx, recs); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := s.Run(ctx, &std.Trim{Column: "animais/especie"}, &std.Lower{Column: "animais/especie"}); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	elapsed := time.Since(start)
	runtime.ReadMemStats(&msAfter)
	f, _ := s.Current()

	// Summary
	recsPerSec := float64(*records) / elapsed.Seconds()
	summary := map[string]any{
		"records":               *records,
		"rows":                  f.Rows(),
		"cols":                  f.Cols(),
		"stages":                sink.writes,
		"elapsed_ms":            elapsed.Milliseconds(),
		"records_per_sec":       recsPerSec,
		"mem_alloc_bytes":       msAfter.Alloc,
		"mem_total_alloc_bytes": msAfter.TotalAlloc - msBefore.TotalAlloc,
		"gc_num":                msAfter.NumGC - msBefore.NumGC,
		"max_group":             *maxGroup,
		"missing_prob":          *missp,
	}

	if *jsonOut {
		b, _ := json.MarshalIndent(summary, "", "  ")
		fmt.Println(string(b))
		return
	}
	fmt.Printf("Records: %d -> %d rows x %d cols\n", *records, f.Rows(), f.Cols())
	fmt.Printf("Elapsed: %s\n", elapsed)
	fmt.Printf("Throughput: %.0f records/s\n", recsPerSec)
	fmt.Printf("Current Alloc: %d MB\n", msAfter.Alloc/1024/1024)
	fmt.Printf("Total Alloc (delta): %d MB\n", (msAfter.TotalAlloc-msBefore.TotalAlloc)/1024/1024)
	fmt.Printf("GC cycles (delta): %d\n", msAfter.NumGC-msBefore.NumGC)
}
