package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"deepmirror/internal/domain/models/career"
	"deepmirror/internal/orchestrator"
)

// ANSI color codes
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorBlue   = "\033[34m"
	colorCyan   = "\033[36m"
	colorBold   = "\033[1m"
)

func colorize(color, text string) string {
	if noColor {
		return text
	}
	return color + text + colorReset
}

func printSuccess(format string, args ...any) {
	fmt.Fprintln(os.Stderr, colorize(colorGreen, "✓ "+fmt.Sprintf(format, args...)))
}

func printError(format string, args ...any) {
	fmt.Fprintln(os.Stderr, colorize(colorRed, "✗ "+fmt.Sprintf(format, args...)))
}

func heading(w io.Writer, text string) {
	fmt.Fprintf(w, "\n%s\n", colorize(colorCyan+colorBold, text))
}

const barWidth = 20

// bar renders value out of 100 as a fixed-width gauge
func bar(value int) string {
	filled := value * barWidth / 100
	return strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)
}

// progressLine redraws the report progress in place
func progressLine(p orchestrator.Progress) string {
	pct := int(p.Percent + 0.5)
	return fmt.Sprintf("\r%s %3d%% %s", colorize(colorBlue, bar(pct)), pct, p.Step)
}

func printMessage(w io.Writer, msg career.Message) {
	switch msg.Role {
	case career.RoleUser:
		fmt.Fprintf(w, "%s %s\n", colorize(colorGreen, "你:"), msg.Content)
	default:
		fmt.Fprintf(w, "%s %s\n", colorize(colorCyan, "镜像:"), msg.Content)
	}
}

func printReport(w io.Writer, r *career.Report) {
	heading(w, "职业画像 · "+r.Archetype)
	fmt.Fprintf(w, "%s\n", r.Summary)

	if len(r.Skills) > 0 {
		fmt.Fprintf(w, "\n%s %s\n", colorize(colorBold, "核心技能:"), strings.Join(r.Skills, " · "))
	}

	if len(r.RPGStats) > 0 {
		fmt.Fprintf(w, "\n%s\n", colorize(colorBold, "能力值"))
		for _, s := range r.RPGStats {
			v := s.Clamped()
			fmt.Fprintf(w, "  %-10s %s %3d\n", s.Name, bar(v), v)
		}
	}

	if len(r.Superpowers) > 0 {
		fmt.Fprintf(w, "\n%s\n", colorize(colorBold, "隐藏天赋"))
		for _, sp := range r.Superpowers {
			fmt.Fprintf(w, "  ★ %s\n", sp.Name)
			if sp.Kind == career.SuperpowerDetailed {
				if sp.Description != "" {
					fmt.Fprintf(w, "    %s\n", sp.Description)
				}
				if len(sp.PotentialRoles) > 0 {
					fmt.Fprintf(w, "    → %s\n", strings.Join(sp.PotentialRoles, "、"))
				}
			}
		}
	}

	if len(r.TargetRoles) > 0 {
		fmt.Fprintf(w, "\n%s %s\n", colorize(colorBold, "目标岗位:"), strings.Join(r.TargetRoles, "、"))
	}
}

func printRoles(w io.Writer, candidates, selected []string) {
	heading(w, "可探索的岗位 (最多选择两个)")
	for i, role := range candidates {
		mark := "[ ]"
		for _, s := range selected {
			if s == role {
				mark = colorize(colorGreen, "[x]")
			}
		}
		fmt.Fprintf(w, "  %d. %s %s\n", i+1, mark, role)
	}
}

func printAnalysis(w io.Writer, role string, a *career.RoleAnalysis) {
	heading(w, "岗位解析 · "+role)
	fmt.Fprintf(w, "%s %s\n", colorize(colorBold, "薪资范围:"), a.SalaryRange)
	fmt.Fprintf(w, "%s %s\n", colorize(colorBold, "为什么适合你:"), a.WhyFit)
	printList(w, "核心职责", a.Responsibilities)
	if a.DailyRoutine != "" {
		fmt.Fprintf(w, "\n%s\n%s\n", colorize(colorBold, "典型的一天"), a.DailyRoutine)
	}
	printList(w, "核心能力", a.CoreCompetencies)
	printList(w, "行业与公司", a.IndustriesCompanies)
	if a.SelectionAdvice != "" {
		fmt.Fprintf(w, "\n%s %s\n", colorize(colorBold, "建议:"), a.SelectionAdvice)
	}
}

func printComparison(w io.Writer, c *career.RoleComparison) {
	heading(w, "岗位对比")
	for _, side := range []career.RoleMatch{c.Role1Analysis, c.Role2Analysis} {
		score := career.RPGStat{Value: side.MatchScore}.Clamped()
		fmt.Fprintf(w, "\n%s  %s %d%%  %s\n", colorize(colorBold, side.RoleName), bar(score), score, side.SalaryRange)
		printList(w, "优势", side.Pros)
		printList(w, "挑战", side.Cons)
	}
	fmt.Fprintf(w, "\n%s\n", c.ComparisonSummary)
	fmt.Fprintf(w, "%s %s\n", colorize(colorBold, "推荐:"), c.Recommendation)
}

func printPlan(w io.Writer, p *career.Plan) {
	heading(w, fmt.Sprintf("执行计划 · %s", p.Duration))
	fmt.Fprintf(w, "%s %s\n", colorize(colorBold, "目标:"), p.Goal)
	for _, phase := range p.Phases {
		fmt.Fprintf(w, "\n%s  %s\n", colorize(colorYellow, phase.Week), phase.Theme)
		for _, task := range phase.Tasks {
			fmt.Fprintf(w, "  %-7s [%s] %s\n", task.Day, task.Type, task.Action)
		}
	}
}

func printConversations(w io.Writer, conversations []career.Conversation) {
	if len(conversations) == 0 {
		fmt.Fprintln(w, "还没有云端对话")
		return
	}
	for i, c := range conversations {
		fmt.Fprintf(w, "  %d. %s %s\n", i+1, c.Title, colorize(colorBlue, c.CreatedAt.Format("2006-01-02 15:04")))
	}
}

func printList(w io.Writer, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(w, "\n%s\n", colorize(colorBold, title))
	for _, item := range items {
		fmt.Fprintf(w, "  • %s\n", item)
	}
}
