// Package todo holds the hierarchical to-do list: tasks that own subtasks,
// the per-entry view/edit state and the All/Active/Completed filter.
//
// Entries never call back into their owner. Operations that affect the
// owner return a Command (DeleteTask, StatusChanged, DeleteSubtask) and the
// owning List applies it through Dispatch:
//
//	l := todo.New()
//	task, _ := l.AddTask("Buy milk")
//	_ = l.Dispatch(task.ToggleCompleted())
//	l.SetFilter(todo.FilterActive) // task is now hidden
//
// # Snapshot files
//
// A list can optionally be written to a JSON snapshot:
//
//	{
//	  "schema_version": 1,
//	  "tasks": [
//	    {
//	      "id": "0b6f...",
//	      "name": "Buy milk",
//	      "completed": false,
//	      "subtasks": [
//	        {"id": "5d1c...", "name": "subtask 1", "time_label": "10:00"}
//	      ]
//	    }
//	  ]
//	}
//
// Snapshots are validated against an embedded JSON Schema, or against a
// schema file when one is given. Edit state and the filter are not stored.
package todo
