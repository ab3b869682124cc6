package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"deepmirror/internal/domain/models/career"
	"deepmirror/internal/orchestrator"
	"deepmirror/internal/session"
)

// cloudHistory is the hosted conversation store as the REPL sees it
type cloudHistory interface {
	session.Cloud
	ListConversations(ctx context.Context) ([]career.Conversation, error)
}

type repl struct {
	orch    *orchestrator.Orchestrator
	cloud   cloudHistory
	scanner *bufio.Scanner
	out     io.Writer

	// conversations holds the last /history listing for /open
	conversations []career.Conversation
}

func newREPL(orch *orchestrator.Orchestrator, cloud cloudHistory, in io.Reader, out io.Writer) *repl {
	return &repl{
		orch:    orch,
		cloud:   cloud,
		scanner: bufio.NewScanner(in),
		out:     out,
	}
}

const helpText = `Commands:
  /report          generate your career report (once unlocked)
  /show            show the current report and plan
  /roles           list roles from your report
  /pick <n>        select or deselect role n (up to two)
  /explore         analyse one selected role or compare two
  /plan            generate an execution plan
  /history         list hosted conversations
  /open <n>        continue hosted conversation n
  /new             start a new conversation
  /clear           delete the local transcript and plan
  /state           show the session phase
  /help            show this help
  /quit            exit
Anything else is sent as a message.`

func (r *repl) run(ctx context.Context) error {
	fmt.Fprintf(r.out, "\n%s\n", colorize(colorCyan, "╔══════════════════════════════════════╗"))
	fmt.Fprintf(r.out, "%s\n", colorize(colorCyan, "║           Career Mirror              ║"))
	fmt.Fprintf(r.out, "%s\n", colorize(colorCyan, "╚══════════════════════════════════════╝"))
	fmt.Fprintln(r.out, colorize(colorBlue, "/help for commands"))
	fmt.Fprintln(r.out)

	for _, msg := range r.orch.Session().Messages() {
		printMessage(r.out, msg)
	}

	for {
		if ctx.Err() != nil {
			return nil
		}
		fmt.Fprintf(r.out, "\n%s ", colorize(colorGreen, r.prompt()))
		line, ok := r.readLine()
		if !ok {
			return nil
		}
		if line == "" {
			continue
		}
		if quit := r.dispatch(ctx, line); quit {
			fmt.Fprintln(r.out, colorize(colorGreen, "✓ 再见！"))
			return nil
		}
	}
}

// prompt reflects the session phase
func (r *repl) prompt() string {
	switch r.orch.State() {
	case orchestrator.ReportUnlocked:
		return "[报告已解锁 /report] >"
	case orchestrator.ReportReady:
		return "[报告] >"
	case orchestrator.PlanReady, orchestrator.Coaching:
		return "[计划] >"
	default:
		return ">"
	}
}

func (r *repl) readLine() (string, bool) {
	if !r.scanner.Scan() {
		return "", false
	}
	return strings.TrimSpace(r.scanner.Text()), true
}

// parseCommand splits "/name arg" into its parts. ok is false for plain text.
func parseCommand(line string) (name, arg string, ok bool) {
	if !strings.HasPrefix(line, "/") {
		return "", "", false
	}
	name, arg, _ = strings.Cut(strings.TrimPrefix(line, "/"), " ")
	return strings.ToLower(name), strings.TrimSpace(arg), true
}

// dispatch handles one input line. It returns true to quit.
func (r *repl) dispatch(ctx context.Context, line string) bool {
	name, arg, ok := parseCommand(line)
	if !ok {
		r.send(ctx, line)
		return false
	}

	switch name {
	case "quit", "exit":
		return true
	case "help":
		fmt.Fprintln(r.out, helpText)
	case "state":
		fmt.Fprintln(r.out, r.orch.State())
	case "report":
		r.generateReport(ctx)
	case "show":
		r.show()
	case "roles":
		r.listRoles()
	case "pick":
		r.pick(arg)
	case "explore":
		r.explore(ctx)
	case "plan":
		r.generatePlan(ctx)
	case "history":
		r.history(ctx)
	case "open":
		r.open(ctx, arg)
	case "new":
		r.orch.NewChat(ctx)
		printMessage(r.out, career.NewWelcomeMessage())
	case "clear":
		r.clear(ctx)
	default:
		r.warn("未知命令 /%s，输入 /help 查看命令", name)
	}
	return false
}

func (r *repl) warn(format string, args ...any) {
	fmt.Fprintln(r.out, colorize(colorYellow, "⚠ "+fmt.Sprintf(format, args...)))
}

func (r *repl) fail(what string, err error) {
	fmt.Fprintln(r.out, colorize(colorRed, fmt.Sprintf("✗ %s: %v", what, err)))
}

func (r *repl) send(ctx context.Context, text string) {
	fmt.Fprintf(r.out, "%s ", colorize(colorCyan, "镜像:"))
	_, err := r.orch.SendMessage(ctx, text, func(ev career.ChatEvent) {
		switch data := ev.Data.(type) {
		case career.TextEvent:
			fmt.Fprint(r.out, data.Delta)
		case career.ToolCallEvent:
			r.showToolCall(data.ToolCall)
		}
	})
	fmt.Fprintln(r.out)
	if err != nil {
		r.fail("发送失败", err)
	}
}

func (r *repl) showToolCall(call career.ToolCall) {
	switch call.ToolName {
	case career.ToolEnableReportButton:
		fmt.Fprintf(r.out, "\n%s\n", colorize(colorYellow, "✦ 报告已解锁，输入 /report 生成你的职业画像"))
	case career.ToolGetSalaryInsight:
		if result, ok := call.Result.(map[string]any); ok {
			if salary, ok := result["salary_range"].(string); ok {
				fmt.Fprintf(r.out, "\n%s\n", colorize(colorBlue,
					fmt.Sprintf("💰 %v · %v: %s", result["role"], result["city"], salary)))
			}
		}
	}
}

func (r *repl) generateReport(ctx context.Context) {
	report, err := r.orch.GenerateReport(ctx, func(p orchestrator.Progress) {
		fmt.Fprint(r.out, progressLine(p))
	})
	fmt.Fprintln(r.out)
	switch {
	case errors.Is(err, orchestrator.ErrLocked):
		r.warn("再多聊几句，报告解锁后就可以生成了")
		return
	case err != nil:
		r.fail("生成报告失败", err)
		return
	}
	printReport(r.out, report)
	r.listRoles()
}

func (r *repl) show() {
	sess := r.orch.Session()
	report := sess.Report()
	if report == nil {
		r.warn("还没有报告")
		return
	}
	printReport(r.out, report)
	if plan := sess.Plan(); plan != nil {
		printPlan(r.out, plan)
	}
}

func (r *repl) listRoles() {
	report := r.orch.Session().Report()
	if report == nil {
		r.warn("还没有报告")
		return
	}
	printRoles(r.out, report.RoleCandidates(), r.orch.SelectedRoles())
}

func (r *repl) pick(arg string) {
	report := r.orch.Session().Report()
	if report == nil {
		r.warn("还没有报告")
		return
	}
	candidates := report.RoleCandidates()
	n, err := strconv.Atoi(arg)
	if err != nil || n < 1 || n > len(candidates) {
		r.warn("请输入 1-%d 之间的编号", len(candidates))
		return
	}
	selected, err := r.orch.ToggleRole(candidates[n-1])
	if err != nil {
		r.fail("选择失败", err)
		return
	}
	printRoles(r.out, candidates, selected)
}

func (r *repl) explore(ctx context.Context) {
	fmt.Fprintln(r.out, colorize(colorBlue, "⏳ 正在分析..."))
	selection, err := r.orch.AnalyzeSelection(ctx)
	switch {
	case errors.Is(err, orchestrator.ErrNoSelection):
		r.warn("先用 /pick 选择一到两个岗位")
		return
	case err != nil:
		r.fail("分析失败", err)
		return
	}
	if selection.Analysis != nil {
		printAnalysis(r.out, selection.Roles[0], selection.Analysis)
	}
	if selection.Comparison != nil {
		printComparison(r.out, selection.Comparison)
	}
}

func (r *repl) generatePlan(ctx context.Context) {
	fmt.Fprintln(r.out, colorize(colorBlue, "⏳ 正在制定计划..."))
	plan, err := r.orch.GeneratePlan(ctx)
	switch {
	case errors.Is(err, orchestrator.ErrNoReport):
		r.warn("先生成报告")
		return
	case err != nil:
		r.fail("生成计划失败", err)
		return
	}
	printPlan(r.out, plan)
	fmt.Fprintln(r.out, colorize(colorBlue, "计划已保存。继续聊天，我会陪你执行它。"))
}

func (r *repl) history(ctx context.Context) {
	if r.cloud == nil || !r.cloud.Authenticated() {
		r.warn("登录后才能查看云端对话 (MIRROR_TOKEN)")
		return
	}
	conversations, err := r.cloud.ListConversations(ctx)
	if err != nil {
		r.fail("获取对话失败", err)
		return
	}
	r.conversations = conversations
	printConversations(r.out, conversations)
}

func (r *repl) open(ctx context.Context, arg string) {
	n, err := strconv.Atoi(arg)
	if err != nil || n < 1 || n > len(r.conversations) {
		r.warn("先用 /history 列出对话，再用 /open <编号>")
		return
	}
	conv := r.conversations[n-1]
	if err := r.orch.SelectConversation(ctx, r.cloud, conv.ID); err != nil {
		r.fail("打开对话失败", err)
		return
	}
	heading(r.out, conv.Title)
	for _, msg := range r.orch.Session().Messages() {
		printMessage(r.out, msg)
	}
}

func (r *repl) clear(ctx context.Context) {
	fmt.Fprint(r.out, "确定要清空聊天记录和计划吗？(y/n): ")
	answer, _ := r.readLine()
	confirmed := strings.EqualFold(answer, "y") || strings.EqualFold(answer, "yes")

	err := r.orch.ClearHistory(ctx, confirmed)
	switch {
	case errors.Is(err, session.ErrNotConfirmed):
		fmt.Fprintln(r.out, "已取消")
	case err != nil:
		r.fail("清空失败", err)
	default:
		fmt.Fprintln(r.out, colorize(colorGreen, "✓ 已清空"))
		printMessage(r.out, career.NewWelcomeMessage())
	}
}
