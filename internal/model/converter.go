package model

import (
	"time"

	"google.golang.org/protobuf/types/known/structpb"
)

func TaskToProto(task *Task) *structpb.Struct {
	if task == nil {
		return nil
	}

	fields := map[string]*structpb.Value{
		"id":        structpb.NewStringValue(task.ID),
		"text":      structpb.NewStringValue(task.Text),
		"completed": structpb.NewBoolValue(task.Completed),
		"points":    structpb.NewNumberValue(float64(task.Points)),
	}
	if task.DueDate != nil {
		fields["dueDate"] = structpb.NewStringValue(task.DueDate.Format(time.RFC3339))
	}

	return &structpb.Struct{Fields: fields}
}

func TaskFromProto(protoTask *structpb.Struct) (*Task, error) {
	if protoTask == nil {
		return nil, nil
	}

	task := &Task{
		ID:        stringField(protoTask, "id"),
		Text:      stringField(protoTask, "text"),
		Completed: protoTask.GetFields()["completed"].GetBoolValue(),
		Points:    int(protoTask.GetFields()["points"].GetNumberValue()),
	}

	if raw := stringField(protoTask, "dueDate"); raw != "" {
		due, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return nil, err
		}
		task.DueDate = &due
	}

	return task, nil
}

func TasksToProto(tasks []Task) *structpb.ListValue {
	values := make([]*structpb.Value, len(tasks))
	for i := range tasks {
		values[i] = structpb.NewStructValue(TaskToProto(&tasks[i]))
	}
	return &structpb.ListValue{Values: values}
}

func TasksFromProto(list *structpb.ListValue) ([]Task, error) {
	tasks := make([]Task, 0, len(list.GetValues()))
	for _, v := range list.GetValues() {
		task, err := TaskFromProto(v.GetStructValue())
		if err != nil {
			return nil, err
		}
		if task != nil {
			tasks = append(tasks, *task)
		}
	}
	return tasks, nil
}

func AddTaskRequestFromProto(req *structpb.Struct) (text, timeOfDay string) {
	if req == nil {
		return "", ""
	}
	return stringField(req, "text"), stringField(req, "time")
}

func TaskIDRequestFromProto(req *structpb.Struct) string {
	if req == nil {
		return ""
	}
	return stringField(req, "id")
}

func stringField(s *structpb.Struct, name string) string {
	return s.GetFields()[name].GetStringValue()
}
