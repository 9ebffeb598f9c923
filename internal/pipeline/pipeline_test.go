package pipeline

import (
	"reflect"
	"testing"
	"time"

	"fleetdash/internal/models"
)

func f64(v float64) *float64 { return &v }

func names[T any](items []T, name func(T) string) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, name(it))
	}
	return out
}

func deviceNames(ds []models.Device) []string {
	return names(ds, func(d models.Device) string { return d.Name })
}

func modelNames(ms []models.AIModel) []string {
	return names(ms, func(m models.AIModel) string { return m.Name })
}

func sampleDevices() []models.Device {
	return []models.Device{
		{ID: 1, Name: "alpha", Type: models.DeviceTypeDrone, Status: models.DeviceStatusOnline, BatteryLevel: 90, Skills: []string{"Mapping", "thermal"}, Tags: []string{"north"}},
		{ID: 2, Name: "bravo", Type: models.DeviceTypeRobot, Status: models.DeviceStatusOffline, BatteryLevel: 10, Skills: []string{"welding"}, Tags: []string{"factory"}},
		{ID: 3, Name: "charlie", Type: models.DeviceTypeCamera, Status: models.DeviceStatusMaintenance, BatteryLevel: 50, Tags: []string{"north", "gate"}},
		{ID: 4, Name: "delta", Type: models.DeviceTypeDrone, Status: models.DeviceStatusOnline, BatteryLevel: 0},
		{ID: 5, Name: "echo", Type: models.DeviceTypeOther, Status: models.DeviceStatusOnline, BatteryLevel: 100, Skills: []string{"MAPPING-3d"}},
	}
}

func TestFilterNoopIsIdentity(t *testing.T) {
	ds := sampleDevices()

	cases := map[string][]models.Device{
		"zero device filter":   DeviceFilter{}.Apply(ds),
		"full battery range":   DeviceFilter{BatteryMin: f64(0), BatteryMax: f64(100)}.Apply(ds),
		"wider than domain":    DeviceFilter{BatteryMin: f64(-20), BatteryMax: f64(500)}.Apply(ds),
		"zero terminal filter": TerminalFilter{}.Apply(ds),
	}
	for name, got := range cases {
		if !reflect.DeepEqual(deviceNames(got), deviceNames(ds)) {
			t.Errorf("%s: got %v, want full input %v", name, deviceNames(got), deviceNames(ds))
		}
	}
}

func TestDeviceBatteryRange(t *testing.T) {
	ds := sampleDevices()
	tests := []struct {
		name     string
		min, max *float64
		want     []string
	}{
		{"inclusive bounds", f64(10), f64(50), []string{"bravo", "charlie"}},
		{"upper only", nil, f64(10), []string{"bravo", "delta"}},
		{"lower only", f64(90), nil, []string{"alpha", "echo"}},
		{"clamped below", f64(-5), f64(0), []string{"delta"}},
		{"clamped above", f64(100), f64(250), []string{"echo"}},
		{"empty when inverted", f64(60), f64(40), []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DeviceFilter{BatteryMin: tt.min, BatteryMax: tt.max}.Apply(ds)
			if !reflect.DeepEqual(deviceNames(got), tt.want) {
				t.Fatalf("got %v, want %v", deviceNames(got), tt.want)
			}
			for _, d := range got {
				if d.BatteryLevel < 0 || d.BatteryLevel > 100 {
					t.Fatalf("battery out of domain: %d", d.BatteryLevel)
				}
			}
		})
	}
}

func TestDeviceFilterConjunctive(t *testing.T) {
	got := DeviceFilter{Status: "online", BatteryMin: f64(50)}.Apply(sampleDevices())
	if want := []string{"alpha", "echo"}; !reflect.DeepEqual(deviceNames(got), want) {
		t.Fatalf("got %v, want %v", deviceNames(got), want)
	}
}

func TestDeviceStats(t *testing.T) {
	got := ComputeDeviceStats(sampleDevices())
	want := DeviceStats{Total: 5, Online: 3, Offline: 1, Maintenance: 1}
	if got != want {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestTerminalFilter(t *testing.T) {
	ds := sampleDevices()
	tests := []struct {
		name string
		f    TerminalFilter
		want []string
	}{
		{"skill substring any case", TerminalFilter{Skill: "mapping"}, []string{"alpha", "echo"}},
		{"tag", TerminalFilter{Tag: "NORTH"}, []string{"alpha", "charlie"}},
		{"type", TerminalFilter{Type: "drone"}, []string{"alpha", "delta"}},
		{"all three", TerminalFilter{Skill: "map", Tag: "nor", Type: "drone"}, []string{"alpha"}},
		{"nil lists never match", TerminalFilter{Skill: "x"}, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.f.Apply(ds)
			if !reflect.DeepEqual(deviceNames(got), tt.want) {
				t.Fatalf("got %v, want %v", deviceNames(got), tt.want)
			}
		})
	}

	stats := ComputeTerminalStats(ds)
	if stats != (TerminalStats{Total: 5, Drones: 2, Robots: 1, Cameras: 1}) {
		t.Fatalf("stats: %+v", stats)
	}
	if got, want := DeviceSkills(ds), []string{"MAPPING-3d", "Mapping", "thermal", "welding"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("skills: got %v, want %v", got, want)
	}
	if got, want := DeviceTags(ds), []string{"factory", "gate", "north"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("tags: got %v, want %v", got, want)
	}
}

func TestModelsFilterSortAndPopular(t *testing.T) {
	ms := []models.AIModel{
		{ID: 1, Name: "a", Price: 5},
		{ID: 2, Name: "b", Price: 3000},
		{ID: 3, Name: "c", Price: 1000},
	}
	f := ModelFilter{PriceMin: f64(0), PriceMax: f64(10000), SortBy: SortByPrice, Order: Desc}
	got := f.Apply(ms)
	if want := []string{"b", "c", "a"}; !reflect.DeepEqual(modelNames(got), want) {
		t.Fatalf("got %v, want %v", modelNames(got), want)
	}
	if p := ComputeModelStats(got, time.Now()).Popular; p != 1 {
		t.Fatalf("popular = %d, want 1", p)
	}
	// вход не переставлен
	if modelNames(ms)[0] != "a" || modelNames(ms)[1] != "b" {
		t.Fatalf("input mutated: %v", modelNames(ms))
	}
}

func TestSortByNameCaseInsensitiveAndIdempotent(t *testing.T) {
	ms := []models.AIModel{{Name: "delta"}, {Name: "Bravo"}, {Name: "alpha"}, {Name: "Charlie"}, {Name: "bravo"}}

	asc := ModelFilter{SortBy: SortByName, Order: Asc}.Apply(ms)
	if want := []string{"alpha", "Bravo", "bravo", "Charlie", "delta"}; !reflect.DeepEqual(modelNames(asc), want) {
		t.Fatalf("asc: got %v, want %v", modelNames(asc), want)
	}
	desc := ModelFilter{SortBy: SortByName, Order: Desc}.Apply(ms)
	if want := []string{"delta", "Charlie", "Bravo", "bravo", "alpha"}; !reflect.DeepEqual(modelNames(desc), want) {
		t.Fatalf("desc: got %v, want %v", modelNames(desc), want)
	}

	for _, dir := range []Direction{Asc, Desc} {
		once := ModelFilter{SortBy: SortByName, Order: dir}.Apply(ms)
		twice := ModelFilter{SortBy: SortByName, Order: dir}.Apply(once)
		if !reflect.DeepEqual(modelNames(once), modelNames(twice)) {
			t.Fatalf("%s not idempotent: %v vs %v", dir, modelNames(once), modelNames(twice))
		}
	}
}

func TestModelMissingValuesTreatedAsZero(t *testing.T) {
	ms := []models.AIModel{
		{Name: "sized", SizeGB: f64(12)},
		{Name: "unsized"},
		{Name: "tiny", SizeGB: f64(0.5)},
	}
	got := ModelFilter{SortBy: SortBySize}.Apply(ms)
	if want := []string{"unsized", "tiny", "sized"}; !reflect.DeepEqual(modelNames(got), want) {
		t.Fatalf("got %v, want %v", modelNames(got), want)
	}
	got = ModelFilter{SizeMax: f64(1)}.Apply(ms)
	if want := []string{"tiny", "unsized"}; !reflect.DeepEqual(modelNames(got), want) {
		t.Fatalf("range: got %v, want %v", modelNames(got), want)
	}
}

func TestModelTagFilterAndStats(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	active := "active"
	ms := []models.AIModel{
		{Name: "seg", Price: 1500, Tags: []string{"Vision", "segmentation"}, Type: &active, CreatedAt: now.Add(-24 * time.Hour)},
		{Name: "nav", Price: 200, Tags: []string{"navigation"}, CreatedAt: now.Add(-40 * 24 * time.Hour)},
		{Name: "det", Price: 1000.01, Tags: []string{"vision"}, CreatedAt: now.Add(-30 * 24 * time.Hour)},
	}
	got := ModelFilter{Tag: "VISION"}.Apply(ms)
	if want := []string{"det", "seg"}; !reflect.DeepEqual(modelNames(got), want) {
		t.Fatalf("got %v, want %v", modelNames(got), want)
	}
	stats := ComputeModelStats(ms, now)
	want := ModelStats{Total: 3, Active: 1, Popular: 2, New: 1}
	if stats != want {
		t.Fatalf("stats: got %+v, want %+v", stats, want)
	}
	if tags, want := ModelTags(ms), []string{"Vision", "navigation", "segmentation", "vision"}; !reflect.DeepEqual(tags, want) {
		t.Fatalf("tags: got %v, want %v", tags, want)
	}
}

func TestParseModelSortKey(t *testing.T) {
	for in, want := range map[string]ModelSortKey{"": SortByName, "name": SortByName, "price": SortByPrice, "size": SortBySize} {
		got, err := ParseModelSortKey(in)
		if err != nil || got != want {
			t.Errorf("ParseModelSortKey(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseModelSortKey("weight"); err == nil {
		t.Error("expected error for unknown key")
	}
	if ParseDirection("DESC") != Desc || ParseDirection("") != Asc || ParseDirection("up") != Asc {
		t.Error("ParseDirection")
	}
}

func TestTaskFilterAndStats(t *testing.T) {
	ts := []models.TaskWithRelations{
		{Task: models.Task{Name: "t1", Status: models.TaskStatusPending}},
		{Task: models.Task{Name: "t2", Status: models.TaskStatusRunning}},
		{Task: models.Task{Name: "t3", Status: models.TaskStatusFailed}},
		{Task: models.Task{Name: "t4", Status: models.TaskStatusRunning}},
	}
	got := TaskFilter{Status: "running"}.Apply(ts)
	if n := names(got, func(t models.TaskWithRelations) string { return t.Name }); !reflect.DeepEqual(n, []string{"t2", "t4"}) {
		t.Fatalf("got %v", n)
	}
	if len(TaskFilter{}.Apply(ts)) != len(ts) {
		t.Fatal("empty status must not filter")
	}
	want := TaskStats{Total: 4, Pending: 1, Running: 2, Failed: 1, Active: 3}
	if s := ComputeTaskStats(ts); s != want {
		t.Fatalf("stats: got %+v, want %+v", s, want)
	}
}
