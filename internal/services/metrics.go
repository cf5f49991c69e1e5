package services

import (
	"context"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/jmoiron/sqlx"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/process"
)

// MetricSample mixes process/system stats with the domain gauges an operator
// actually watches: queue depth and today's posting/lead volume.
type MetricSample struct {
	CapturedAt        time.Time `json:"capturedAt"`
	PendingPosts      int       `json:"pendingPosts"`
	FailedPosts       int       `json:"failedPosts"`
	PostedToday       int       `json:"postedToday"`
	Buildings         int       `json:"buildings"`
	LeadsToday        int       `json:"leadsToday"`
	ProcessRSSBytes   int64     `json:"processRssBytes"`
	SystemMemoryTotal int64     `json:"systemMemoryTotalBytes"`
	SystemMemoryUsed  int64     `json:"systemMemoryUsedBytes"`
	DiskTotalBytes    int64     `json:"diskTotalBytes"`
	DiskUsedBytes     int64     `json:"diskUsedBytes"`
	ProcessCpuLoad    float64   `json:"processCpuLoad"`
	SystemCpuLoad     float64   `json:"systemCpuLoad"`
}

func CaptureMetrics(db *sqlx.DB, diskPath string) (MetricSample, error) {
	proc, _ := process.NewProcess(int32(os.Getpid()))
	memStat, _ := mem.VirtualMemory()
	diskStat, err := disk.Usage(diskPath)
	if err != nil {
		diskStat, _ = disk.Usage("/")
	}
	processRSS := int64(0)
	processCPU := float64(0)
	if proc != nil {
		rss, _ := proc.MemoryInfo()
		if rss != nil {
			processRSS = int64(rss.RSS)
		}
		cpuPerc, _ := proc.CPUPercent()
		processCPU = cpuPerc / 100.0
	}
	sysCPU, _ := cpu.Percent(0, false)
	sysCPUValue := 0.0
	if len(sysCPU) > 0 {
		sysCPUValue = sysCPU[0] / 100.0
	}

	now := time.Now().UTC()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	sample := MetricSample{
		CapturedAt:        now,
		ProcessRSSBytes:   processRSS,
		SystemMemoryTotal: int64(memStat.Total),
		SystemMemoryUsed:  int64(memStat.Total - memStat.Available),
		DiskTotalBytes:    int64(diskStat.Total),
		DiskUsedBytes:     int64(diskStat.Used),
		ProcessCpuLoad:    processCPU,
		SystemCpuLoad:     sysCPUValue,
	}
	_ = db.Get(&sample.PendingPosts, `SELECT count(*) FROM post_queue WHERE status = 'pending'`)
	_ = db.Get(&sample.FailedPosts, `SELECT count(*) FROM post_queue WHERE status = 'failed'`)
	_ = db.Get(&sample.PostedToday, `SELECT count(*) FROM post_queue WHERE status = 'posted' AND posted_at >= $1`, midnight)
	_ = db.Get(&sample.Buildings, `SELECT count(*) FROM buildings`)
	_ = db.Get(&sample.LeadsToday, `SELECT count(*) FROM leads WHERE created_at >= $1`, midnight)

	_, err = db.Exec(`
INSERT INTO server_metric_samples (
  id, captured_at, pending_posts, failed_posts, posted_today, buildings, leads_today,
  process_rss_bytes, system_memory_total_bytes, system_memory_used_bytes,
  disk_total_bytes, disk_used_bytes, process_cpu_load, system_cpu_load
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
`, uuid.NewString(), sample.CapturedAt, sample.PendingPosts, sample.FailedPosts, sample.PostedToday,
		sample.Buildings, sample.LeadsToday, sample.ProcessRSSBytes, sample.SystemMemoryTotal,
		sample.SystemMemoryUsed, sample.DiskTotalBytes, sample.DiskUsedBytes, sample.ProcessCpuLoad, sample.SystemCpuLoad)
	if err != nil {
		return MetricSample{}, err
	}
	return sample, nil
}

func LatestMetrics(db *sqlx.DB, limit int) ([]MetricSample, error) {
	type row struct {
		CapturedAt        time.Time `db:"captured_at"`
		PendingPosts      int       `db:"pending_posts"`
		FailedPosts       int       `db:"failed_posts"`
		PostedToday       int       `db:"posted_today"`
		Buildings         int       `db:"buildings"`
		LeadsToday        int       `db:"leads_today"`
		ProcessRSSBytes   int64     `db:"process_rss_bytes"`
		SystemMemoryTotal int64     `db:"system_memory_total_bytes"`
		SystemMemoryUsed  int64     `db:"system_memory_used_bytes"`
		DiskTotalBytes    int64     `db:"disk_total_bytes"`
		DiskUsedBytes     int64     `db:"disk_used_bytes"`
		ProcessCpuLoad    float64   `db:"process_cpu_load"`
		SystemCpuLoad     float64   `db:"system_cpu_load"`
	}
	rows := []row{}
	if err := db.Select(&rows, `
SELECT captured_at, pending_posts, failed_posts, posted_today, buildings, leads_today,
       process_rss_bytes, system_memory_total_bytes, system_memory_used_bytes,
       disk_total_bytes, disk_used_bytes, process_cpu_load, system_cpu_load
FROM server_metric_samples
ORDER BY captured_at DESC
LIMIT $1
`, limit); err != nil {
		return nil, err
	}
	items := make([]MetricSample, 0, len(rows))
	for i := len(rows) - 1; i >= 0; i-- {
		items = append(items, MetricSample{
			CapturedAt:        rows[i].CapturedAt,
			PendingPosts:      rows[i].PendingPosts,
			FailedPosts:       rows[i].FailedPosts,
			PostedToday:       rows[i].PostedToday,
			Buildings:         rows[i].Buildings,
			LeadsToday:        rows[i].LeadsToday,
			ProcessRSSBytes:   rows[i].ProcessRSSBytes,
			SystemMemoryTotal: rows[i].SystemMemoryTotal,
			SystemMemoryUsed:  rows[i].SystemMemoryUsed,
			DiskTotalBytes:    rows[i].DiskTotalBytes,
			DiskUsedBytes:     rows[i].DiskUsedBytes,
			ProcessCpuLoad:    rows[i].ProcessCpuLoad,
			SystemCpuLoad:     rows[i].SystemCpuLoad,
		})
	}
	return items, nil
}

type MetricsHub struct {
	clients map[*websocket.Conn]bool
	ch      chan MetricSample
}

func NewMetricsHub() *MetricsHub {
	return &MetricsHub{
		clients: map[*websocket.Conn]bool{},
		ch:      make(chan MetricSample, 16),
	}
}

func (h *MetricsHub) Run(ctx context.Context) {
	for {
		select {
		case sample := <-h.ch:
			for conn := range h.clients {
				_ = conn.WriteJSON(sample)
			}
		case <-ctx.Done():
			return
		}
	}
}

func (h *MetricsHub) Broadcast(sample MetricSample) {
	select {
	case h.ch <- sample:
	default:
	}
}

func (h *MetricsHub) Add(conn *websocket.Conn) {
	h.clients[conn] = true
}

func (h *MetricsHub) Remove(conn *websocket.Conn) {
	delete(h.clients, conn)
}
