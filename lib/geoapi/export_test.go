package geoapi

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExportImage(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/exports:image", r.URL.Path)
		body := decodeBody(t, r)
		require.Equal(t, "img-1", body["image"])
		require.Equal(t, float64(10), body["scale"])
		require.Equal(t, float64(1e10), body["maxPixels"])

		destination := body["destination"].(map[string]any)
		require.Equal(t, "basin-exports", destination["bucket"])
		require.Equal(t, "snake_river/upper", destination["folder"])
		require.Equal(t, "GEOTIFF", destination["format"])

		writeJson(w, http.StatusOK, map[string]any{
			"task": map[string]any{"id": "task-1", "state": "PENDING"},
		})
	}))

	task, err := client.ExportImage(context.Background(), ImageExport{
		Image: Image{Id: "img-1"},
		Destination: Destination{
			Bucket:     "basin-exports",
			Folder:     "snake_river/upper",
			FilePrefix: "upper_dem",
			Format:     "GEOTIFF",
		},
		Scale:     10,
		MaxPixels: 1e10,
	})
	require.NoError(t, err)
	require.Equal(t, "task-1", task.Id)
	require.Equal(t, TaskPending, task.State)
	require.False(t, task.State.Terminal())
}

func TestExportTable(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/exports:table", r.URL.Path)
		body := decodeBody(t, r)
		require.Equal(t, "tbl-2", body["table"])

		writeJson(w, http.StatusOK, map[string]any{
			"task": map[string]any{"id": "task-2", "state": "READY"},
		})
	}))

	task, err := client.ExportTable(context.Background(), TableExport{
		Table:       Table{Id: "tbl-2"},
		Destination: Destination{Bucket: "basin-exports", Format: "SHP"},
	})
	require.NoError(t, err)
	require.Equal(t, "task-2", task.Id)
	require.Equal(t, TaskReady, task.State)
}

func TestGetTask(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "/v1/exports/task-1", r.URL.Path)
		writeJson(w, http.StatusOK, map[string]any{
			"task": map[string]any{
				"id":             "task-1",
				"state":          "COMPLETED",
				"progress":       1.0,
				"destinationUri": "gs://basin-exports/snake_river/upper/upper_dem.tif",
			},
		})
	}))

	task, err := client.GetTask(context.Background(), "task-1")
	require.NoError(t, err)
	require.Equal(t, TaskCompleted, task.State)
	require.True(t, task.State.Terminal())
	require.Equal(t, "gs://basin-exports/snake_river/upper/upper_dem.tif", task.DestinationUri)
}

func TestCancelTask(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/exports/task-1:cancel", r.URL.Path)
		writeJson(w, http.StatusOK, map[string]any{
			"task": map[string]any{"id": "task-1", "state": "CANCELLED"},
		})
	}))

	task, err := client.CancelTask(context.Background(), "task-1")
	require.NoError(t, err)
	require.Equal(t, TaskCancelled, task.State)
	require.True(t, task.State.Terminal())
}

func TestTaskStateTerminal(t *testing.T) {
	for state, terminal := range map[TaskState]bool{
		TaskPending:   false,
		TaskReady:     false,
		TaskRunning:   false,
		TaskCompleted: true,
		TaskFailed:    true,
		TaskCancelled: true,
	} {
		require.Equal(t, terminal, state.Terminal(), "state %s", state)
	}
}
