package grpc

import (
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/Raisondetr3/tasktango/internal/model"
	"github.com/Raisondetr3/tasktango/internal/service"
)

// Reply is the decoded form of a TaskService response.
type Reply struct {
	Task        *model.Task
	Tasks       []model.Task
	TotalPoints int
	Event       service.Event
}

func ResultToProto(res service.Result) *structpb.Struct {
	out := ListToProto(res.Tasks, sumPoints(res.Tasks))
	if res.Task != nil {
		out.Fields["task"] = structpb.NewStructValue(model.TaskToProto(res.Task))
	}
	if res.Event.Kind != service.EventNone {
		out.Fields["event"] = structpb.NewStructValue(eventToProto(res.Event))
	}
	return out
}

func ListToProto(tasks []model.Task, totalPoints int) *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"tasks":       structpb.NewListValue(model.TasksToProto(tasks)),
		"totalPoints": structpb.NewNumberValue(float64(totalPoints)),
	}}
}

func ReplyFromProto(s *structpb.Struct) (*Reply, error) {
	fields := s.GetFields()

	tasks, err := model.TasksFromProto(fields["tasks"].GetListValue())
	if err != nil {
		return nil, err
	}

	reply := &Reply{
		Tasks:       tasks,
		TotalPoints: int(fields["totalPoints"].GetNumberValue()),
	}

	if ts := fields["task"].GetStructValue(); ts != nil {
		task, err := model.TaskFromProto(ts)
		if err != nil {
			return nil, err
		}
		reply.Task = task
	}

	if ev := fields["event"].GetStructValue(); ev != nil {
		reply.Event = eventFromProto(ev)
	}

	return reply, nil
}

func eventToProto(ev service.Event) *structpb.Struct {
	fields := map[string]*structpb.Value{
		"kind":  structpb.NewStringValue(ev.Kind.String()),
		"count": structpb.NewNumberValue(float64(ev.Count)),
	}
	if ev.TaskID != "" {
		fields["taskId"] = structpb.NewStringValue(ev.TaskID)
	}
	if ev.Points != 0 {
		fields["points"] = structpb.NewNumberValue(float64(ev.Points))
	}
	return &structpb.Struct{Fields: fields}
}

func eventFromProto(s *structpb.Struct) service.Event {
	fields := s.GetFields()

	ev := service.Event{
		TaskID: fields["taskId"].GetStringValue(),
		Points: int(fields["points"].GetNumberValue()),
		Count:  int(fields["count"].GetNumberValue()),
	}
	switch fields["kind"].GetStringValue() {
	case service.EventOnTimeBonusAwarded.String():
		ev.Kind = service.EventOnTimeBonusAwarded
	case service.EventCompletedCleared.String():
		ev.Kind = service.EventCompletedCleared
	}
	return ev
}

func sumPoints(tasks []model.Task) int {
	total := 0
	for _, t := range tasks {
		total += t.Points
	}
	return total
}
