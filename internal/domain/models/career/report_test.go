package career

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSuperpower_UnmarshalVariants(t *testing.T) {
	raw := `{
		"archetype": "洞察导航者",
		"skills": ["沟通", "分析", "写作"],
		"rpg_stats": [{"name": "逻辑", "value": 80}],
		"superpowers": [
			"共情力",
			{"name": "系统思维", "description": "看见全局", "potential_roles": ["产品经理", "战略咨询"]}
		],
		"summary": "你被看见了。"
	}`

	var report Report
	require.NoError(t, json.Unmarshal([]byte(raw), &report))
	require.Len(t, report.Superpowers, 2)

	plain := report.Superpowers[0]
	assert.Equal(t, SuperpowerPlain, plain.Kind)
	assert.Equal(t, "共情力", plain.Name)
	assert.Empty(t, plain.PotentialRoles)

	detailed := report.Superpowers[1]
	assert.Equal(t, SuperpowerDetailed, detailed.Kind)
	assert.Equal(t, "系统思维", detailed.Name)
	assert.Equal(t, []string{"产品经理", "战略咨询"}, detailed.PotentialRoles)

	assert.Equal(t, []string{"共情力", "系统思维"}, report.SuperpowerNames())
}

func TestSuperpower_MarshalKeepsShape(t *testing.T) {
	data, err := json.Marshal([]Superpower{
		PlainSuperpower("共情力"),
		{Name: "系统思维", Description: "看见全局"},
	})
	require.NoError(t, err)
	assert.JSONEq(t,
		`["共情力", {"name":"系统思维","description":"看见全局","potential_roles":[]}]`,
		string(data))
}

func TestSuperpower_RejectsOtherShapes(t *testing.T) {
	var sp Superpower
	assert.Error(t, json.Unmarshal([]byte(`42`), &sp))
}

func TestRPGStat_Clamped(t *testing.T) {
	tests := []struct {
		value float64
		want  int
	}{
		{value: 50, want: 50},
		{value: 0, want: 1},
		{value: -20, want: 1},
		{value: 100, want: 100},
		{value: 180, want: 100},
		{value: 72.6, want: 73},
		{value: math.NaN(), want: 1},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, RPGStat{Name: "x", Value: tt.value}.Clamped(), "value %v", tt.value)
	}
}

func TestReport_RoleCandidates(t *testing.T) {
	report := Report{
		Superpowers: []Superpower{
			{Name: "a", PotentialRoles: []string{"产品经理", "用户研究"}},
			PlainSuperpower("b"),
			{Name: "c", PotentialRoles: []string{"用户研究", "战略咨询", ""}},
		},
	}

	assert.Equal(t, []string{"产品经理", "用户研究", "战略咨询"}, report.RoleCandidates())
}

func TestMessage_UnlocksReport(t *testing.T) {
	msg := Message{Role: RoleAssistant, Content: "要看看报告吗？"}
	assert.False(t, msg.UnlocksReport())

	msg.ToolInvocations = []ToolCall{
		{ToolName: ToolGetSalaryInsight},
		{ToolName: ToolEnableReportButton, Arguments: map[string]any{"reason": "完整"}},
	}
	assert.True(t, msg.UnlocksReport())
}

func TestTaskType_Valid(t *testing.T) {
	for _, tt := range []TaskType{TaskLearning, TaskAction, TaskConnection, TaskReflection} {
		assert.True(t, tt.Valid())
	}
	assert.False(t, TaskType("rest").Valid())
}
