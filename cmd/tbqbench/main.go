// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Command tbqbench drives a transactional bounded queue with concurrent
// producers and consumers and reports throughput and transaction counters.
//
// Usage:
//
//	tbqbench -mode direct -producers 4 -consumers 4 -duration 5s
//	tbqbench -mode transfer -movers 2 -json
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// SystemInfo holds system information.
type SystemInfo struct {
	NumCPU      int     `json:"num_cpu"`
	CPUModel    string  `json:"cpu_model,omitempty"`
	CPUSpeedMHz float64 `json:"cpu_speed_mhz,omitempty"`
	GOARCH      string  `json:"go_arch"`
	GoVersion   string  `json:"go_version"`
	TotalMemory uint64  `json:"total_memory_bytes,omitempty"`
}

// Report is the JSON document written with -json.
type Report struct {
	SessionTime string     `json:"session_time"`
	SystemInfo  SystemInfo `json:"system_info"`
	Results     []Result   `json:"results"`
}

func main() {
	mode := flag.String("mode", string(ModeDirect), "Workload: direct or transfer")
	capacity := flag.Int("capacity", 64, "Queue capacity")
	producers := flag.Int("producers", 4, "Number of producer goroutines")
	consumers := flag.Int("consumers", 4, "Number of consumer goroutines")
	movers := flag.Int("movers", 2, "Number of mover goroutines (transfer mode)")
	duration := flag.Duration("duration", 5*time.Second, "Production time per iteration")
	iterations := flag.Int("iter", 1, "Number of iterations")
	jsonOut := flag.Bool("json", false, "Write a JSON report to stdout")
	progress := flag.Bool("progress", false, "Display a progress bar on stderr")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	cfg := Config{
		Mode:      Mode(*mode),
		Capacity:  *capacity,
		Producers: *producers,
		Consumers: *consumers,
		Movers:    *movers,
		Duration:  *duration,
	}
	if err := cfg.validate(); err != nil {
		logger.Error("invalid configuration", "err", err)
		os.Exit(2)
	}

	var bar *progressbar.ProgressBar
	if *progress {
		bar = progressbar.NewOptions(*iterations,
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionSetDescription("tbqbench"),
			progressbar.OptionShowCount(),
		)
	}

	sys := gatherSystemInfo()
	logger.Info("starting",
		"mode", cfg.Mode, "capacity", cfg.Capacity,
		"producers", cfg.Producers, "consumers", cfg.Consumers,
		"cpus", sys.NumCPU, "cpu_model", sys.CPUModel)

	report := Report{
		SessionTime: time.Now().Format(time.RFC3339),
		SystemInfo:  sys,
	}
	failed := false
	for i := 1; i <= *iterations; i++ {
		res, err := Run(cfg)
		if err != nil {
			logger.Error("run failed", "iteration", i, "err", err)
			failed = true
		}
		report.Results = append(report.Results, res)
		if !*jsonOut {
			fmt.Printf("iteration %d/%d: produced=%d consumed=%d throughput=%.0f msg/s commits=%d retries=%d conflicts=%d took=%v\n",
				i, *iterations, res.Produced, res.Consumed, res.Throughput,
				res.Commits, res.Retries, res.Conflicts, res.Elapsed)
		}
		if bar != nil {
			_ = bar.Add(1)
		}
	}
	if bar != nil {
		_ = bar.Finish()
		fmt.Fprintln(os.Stderr)
	}

	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			logger.Error("encoding report", "err", err)
			os.Exit(1)
		}
	}
	if failed {
		os.Exit(1)
	}
}

// gatherSystemInfo collects basic CPU and memory details.
func gatherSystemInfo() SystemInfo {
	info := SystemInfo{
		NumCPU:    runtime.NumCPU(),
		GOARCH:    runtime.GOARCH,
		GoVersion: runtime.Version(),
	}
	if infos, err := cpu.Info(); err == nil && len(infos) > 0 {
		info.CPUModel = infos[0].ModelName
		info.CPUSpeedMHz = infos[0].Mhz
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		info.TotalMemory = vm.Total
	}
	return info
}
