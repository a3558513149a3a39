package main

import (
	"context"
	"flag"
	"fmt"
	"image/color"
	"log"
	"os"

	"gioui.org/app"
	"gioui.org/font"
	"gioui.org/font/gofont"
	"gioui.org/layout"
	"gioui.org/op"
	"gioui.org/text"
	"gioui.org/unit"
	"gioui.org/widget"
	"gioui.org/widget/material"

	"todo/internal/config"
	"todo/internal/db"
	"todo/pkg/message"
	"todo/pkg/savedstate"
	"todo/pkg/statistics"
	"todo/pkg/task"
	"todo/pkg/taskdetail"
	"todo/pkg/taskedit"
	"todo/pkg/tasklist"
)

var theme *material.Theme

var (
	dimColor    = color.NRGBA{R: 0x80, G: 0x80, B: 0x80, A: 0xFF}
	noticeColor = color.NRGBA{R: 0xFF, G: 0xA0, B: 0x00, A: 0xFF}
	deleteColor = color.NRGBA{R: 0xC0, G: 0x30, B: 0x30, A: 0xFF}
)

// Pages
const (
	pageTasks = iota
	pageDetail
	pageEdit
	pageStatistics
)

type UI struct {
	ctx    context.Context
	window *app.Window
	repo   *task.Repository

	currentPage int

	// Nav buttons
	navTasks      widget.Clickable
	navStatistics widget.Clickable

	// Tasks
	list            *tasklist.ViewModel
	taskList        widget.List
	rows            map[string]*taskRow
	filterAll       widget.Clickable
	filterActive    widget.Clickable
	filterCompleted widget.Clickable
	addBtn          widget.Clickable
	clearBtn        widget.Clickable
	refreshBtn      widget.Clickable
	dismissBtn      widget.Clickable

	// Detail
	detail        *taskdetail.ViewModel
	stopDetail    func()
	detailCheck   widget.Bool
	editBtn       widget.Clickable
	deleteBtn     widget.Clickable
	detailRefresh widget.Clickable
	detailDismiss widget.Clickable

	// Add/edit
	edit              *taskedit.ViewModel
	stopEdit          func()
	editLoaded        bool
	titleEditor       widget.Editor
	descriptionEditor widget.Editor
	saveBtn           widget.Clickable
	editDismiss       widget.Clickable

	// Statistics
	stats        *statistics.ViewModel
	stopStats    func()
	statsRefresh widget.Clickable
}

type taskRow struct {
	check widget.Bool
	open  widget.Clickable
}

func main() {
	configPath := flag.String("config", "", "config file (default ~/.todo/config.yaml)")
	flag.Parse()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	tasks, closeStore, err := db.Open(ctx, cfg.Store)
	if err != nil {
		log.Fatalf("open store: %v", err)
	}
	saved, err := savedstate.OpenFile(cfg.StatePath)
	if err != nil {
		log.Fatalf("open state: %v", err)
	}

	theme = material.NewTheme()
	theme.Shaper = text.NewShaper(text.WithCollection(gofont.Collection()))
	theme.Palette.Bg = color.NRGBA{R: 0x12, G: 0x12, B: 0x12, A: 0xFF}
	theme.Palette.Fg = color.NRGBA{R: 0xE0, G: 0xE0, B: 0xE0, A: 0xFF}
	theme.Palette.ContrastBg = color.NRGBA{R: 0x30, G: 0x60, B: 0xA0, A: 0xFF}
	theme.Palette.ContrastFg = color.NRGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}

	w := new(app.Window)
	w.Option(app.Title("todo"))
	w.Option(app.Size(unit.Dp(900), unit.Dp(700)))

	ui := &UI{
		ctx:    ctx,
		window: w,
		repo:   task.NewRepository(tasks),
		rows:   make(map[string]*taskRow),
	}
	ui.taskList.Axis = layout.Vertical
	ui.titleEditor.SingleLine = true

	ui.list = tasklist.New(ctx, ui.repo, saved)
	stopList := watch(w, ui.list.Subscribe)

	go func() {
		err := ui.run(w)
		ui.closeScreens()
		stopList()
		ui.list.Close()
		closeStore()
		if err != nil {
			log.Fatal(err)
		}
		os.Exit(0)
	}()
	app.Main()
}

// watch redraws w on every state a screen emits. The returned func ends the
// subscription.
func watch[S any](w *app.Window, subscribe func() (<-chan S, func())) func() {
	states, cancel := subscribe()
	go func() {
		for range states {
			w.Invalidate()
		}
	}()
	return cancel
}

func (ui *UI) run(w *app.Window) error {
	var ops op.Ops
	for {
		switch e := w.Event().(type) {
		case app.DestroyEvent:
			return e.Err
		case app.FrameEvent:
			gtx := app.NewContext(&ops, e)
			ui.handleClicks(gtx)
			ui.handleResults()
			ui.layout(gtx)
			e.Frame(gtx.Ops)
		}
	}
}

// Navigation

func (ui *UI) openTasks() {
	ui.closeScreens()
	ui.currentPage = pageTasks
}

func (ui *UI) openDetail(id string) {
	ui.closeScreens()
	ui.detail = taskdetail.New(ui.ctx, ui.repo, id)
	ui.stopDetail = watch(ui.window, ui.detail.Subscribe)
	ui.currentPage = pageDetail
}

// openEdit opens the add/edit screen; an empty id adds a task.
func (ui *UI) openEdit(id string) {
	ui.closeScreens()
	ui.edit = taskedit.New(ui.ctx, ui.repo, id)
	ui.stopEdit = watch(ui.window, ui.edit.Subscribe)
	ui.editLoaded = false
	ui.titleEditor.SetText("")
	ui.descriptionEditor.SetText("")
	ui.currentPage = pageEdit
}

func (ui *UI) openStatistics() {
	ui.closeScreens()
	ui.stats = statistics.New(ui.ctx, ui.repo)
	ui.stopStats = watch(ui.window, ui.stats.Subscribe)
	ui.currentPage = pageStatistics
}

// closeScreens ends every screen except the task list, which lives as long
// as the window.
func (ui *UI) closeScreens() {
	if ui.detail != nil {
		ui.stopDetail()
		ui.detail.Close()
		ui.detail = nil
	}
	if ui.edit != nil {
		ui.stopEdit()
		ui.edit.Close()
		ui.edit = nil
	}
	if ui.stats != nil {
		ui.stopStats()
		ui.stats.Close()
		ui.stats = nil
	}
}

// handleResults reacts to the one-shot flags screens raise when they finish.
func (ui *UI) handleResults() {
	if ui.detail != nil && ui.detail.State().IsTaskDeleted {
		ui.openTasks()
		ui.list.ShowEditResult(tasklist.DeleteResultOK)
	}
	if ui.edit != nil && ui.edit.State().IsTaskSaved {
		result := tasklist.EditResultOK
		if ui.edit.IsNew() {
			result = tasklist.AddResultOK
		}
		ui.openTasks()
		ui.list.ShowEditResult(result)
	}
	if ui.edit != nil && !ui.editLoaded {
		if s := ui.edit.State(); !s.IsLoading {
			ui.titleEditor.SetText(s.Title)
			ui.descriptionEditor.SetText(s.Description)
			ui.editLoaded = true
		}
	}
}

func (ui *UI) handleClicks(gtx layout.Context) {
	if ui.navTasks.Clicked(gtx) {
		ui.openTasks()
	}
	if ui.navStatistics.Clicked(gtx) {
		ui.openStatistics()
	}

	switch ui.currentPage {
	case pageTasks:
		ui.handleTaskClicks(gtx)
	case pageDetail:
		ui.handleDetailClicks(gtx)
	case pageEdit:
		ui.handleEditClicks(gtx)
	case pageStatistics:
		ui.handleStatisticsClicks(gtx)
	}
}

func (ui *UI) handleTaskClicks(gtx layout.Context) {
	if ui.filterAll.Clicked(gtx) {
		ui.setFiltering(task.FilterAll)
	}
	if ui.filterActive.Clicked(gtx) {
		ui.setFiltering(task.FilterActive)
	}
	if ui.filterCompleted.Clicked(gtx) {
		ui.setFiltering(task.FilterCompleted)
	}
	if ui.addBtn.Clicked(gtx) {
		ui.openEdit("")
		return
	}
	if ui.clearBtn.Clicked(gtx) {
		go func() {
			if err := ui.list.ClearCompletedTasks(ui.ctx); err != nil {
				log.Printf("ui: clear completed: %v", err)
			}
		}()
	}
	if ui.refreshBtn.Clicked(gtx) {
		go func() {
			if err := ui.list.Refresh(ui.ctx); err != nil {
				log.Printf("ui: refresh: %v", err)
			}
		}()
	}
	if ui.dismissBtn.Clicked(gtx) {
		ui.list.MessageShown()
	}

	for _, t := range ui.list.State().Items {
		row := ui.row(t.ID)
		if row.check.Update(gtx) {
			t, completed := t, row.check.Value
			go func() {
				if err := ui.list.CompleteTask(ui.ctx, t, completed); err != nil {
					log.Printf("ui: complete task %s: %v", t.ID, err)
				}
			}()
		}
		if row.open.Clicked(gtx) {
			ui.openDetail(t.ID)
			return
		}
	}
}

func (ui *UI) setFiltering(f task.Filter) {
	if err := ui.list.SetFiltering(f); err != nil {
		log.Printf("ui: save filter: %v", err)
	}
}

func (ui *UI) row(id string) *taskRow {
	r, ok := ui.rows[id]
	if !ok {
		r = &taskRow{}
		ui.rows[id] = r
	}
	return r
}

func (ui *UI) handleDetailClicks(gtx layout.Context) {
	vm := ui.detail
	if ui.detailCheck.Update(gtx) {
		checked := ui.detailCheck.Value
		go func() {
			if err := vm.OnTaskChecked(ui.ctx, checked); err != nil {
				log.Printf("ui: check task %s: %v", vm.TaskID(), err)
			}
		}()
	}
	if ui.detailDismiss.Clicked(gtx) {
		vm.MessageShown()
	}
	if ui.detailRefresh.Clicked(gtx) {
		go func() {
			if err := vm.Refresh(ui.ctx); err != nil {
				log.Printf("ui: refresh task %s: %v", vm.TaskID(), err)
			}
		}()
	}
	if ui.editBtn.Clicked(gtx) {
		ui.openEdit(vm.TaskID())
		return
	}
	if ui.deleteBtn.Clicked(gtx) {
		go func() {
			if err := vm.DeleteTask(ui.ctx); err != nil {
				log.Printf("ui: delete task %s: %v", vm.TaskID(), err)
			}
		}()
	}
}

func (ui *UI) handleStatisticsClicks(gtx layout.Context) {
	if ui.stats == nil || !ui.statsRefresh.Clicked(gtx) {
		return
	}
	vm := ui.stats
	go func() {
		if err := vm.Refresh(ui.ctx); err != nil {
			log.Printf("ui: refresh statistics: %v", err)
		}
	}()
}

func (ui *UI) handleEditClicks(gtx layout.Context) {
	vm := ui.edit
	if ui.editDismiss.Clicked(gtx) {
		vm.MessageShown()
	}
	if ui.saveBtn.Clicked(gtx) {
		vm.OnTitleChanged(ui.titleEditor.Text())
		vm.OnDescriptionChanged(ui.descriptionEditor.Text())
		go func() {
			if err := vm.SaveTask(ui.ctx); err != nil {
				log.Printf("ui: save task: %v", err)
			}
		}()
	}
}

// Layout

func (ui *UI) layout(gtx layout.Context) layout.Dimensions {
	return layout.Flex{Axis: layout.Horizontal}.Layout(gtx,
		layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			return ui.layoutNav(gtx)
		}),
		layout.Flexed(1, func(gtx layout.Context) layout.Dimensions {
			return layout.UniformInset(unit.Dp(16)).Layout(gtx, func(gtx layout.Context) layout.Dimensions {
				switch {
				case ui.currentPage == pageDetail && ui.detail != nil:
					return ui.layoutDetail(gtx)
				case ui.currentPage == pageEdit && ui.edit != nil:
					return ui.layoutEdit(gtx)
				case ui.currentPage == pageStatistics && ui.stats != nil:
					return ui.layoutStatistics(gtx)
				default:
					return ui.layoutTasks(gtx)
				}
			})
		}),
	)
}

func (ui *UI) layoutNav(gtx layout.Context) layout.Dimensions {
	gtx.Constraints.Min.X = gtx.Dp(unit.Dp(160))
	gtx.Constraints.Max.X = gtx.Dp(unit.Dp(160))
	return layout.Flex{Axis: layout.Vertical}.Layout(gtx,
		layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			return layout.Inset{Top: unit.Dp(16), Bottom: unit.Dp(16), Left: unit.Dp(12)}.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
				label := material.H6(theme, "todo")
				label.Color = theme.Palette.ContrastFg
				return label.Layout(gtx)
			})
		}),
		layout.Rigid(navBtn(theme, &ui.navTasks, "Tasks", ui.currentPage != pageStatistics)),
		layout.Rigid(navBtn(theme, &ui.navStatistics, "Statistics", ui.currentPage == pageStatistics)),
	)
}

func navBtn(th *material.Theme, btn *widget.Clickable, label string, active bool) layout.Widget {
	return func(gtx layout.Context) layout.Dimensions {
		return layout.Inset{Top: unit.Dp(2), Bottom: unit.Dp(2), Left: unit.Dp(8), Right: unit.Dp(8)}.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
			b := material.Button(th, btn, label)
			if active {
				b.Background = th.Palette.ContrastBg
			} else {
				b.Background = color.NRGBA{A: 0}
			}
			b.Color = th.Palette.Fg
			return b.Layout(gtx)
		})
	}
}

// filterBtn highlights the button of the selected filter.
func filterBtn(th *material.Theme, btn *widget.Clickable, label message.Code, selected bool) layout.Widget {
	return func(gtx layout.Context) layout.Dimensions {
		b := material.Button(th, btn, label.String())
		if !selected {
			b.Background = color.NRGBA{R: 0x30, G: 0x30, B: 0x30, A: 0xFF}
		}
		return b.Layout(gtx)
	}
}

// notice shows a pending user message with a dismiss button. It renders
// nothing when there is no message.
func notice(th *material.Theme, code message.Code, dismiss *widget.Clickable) layout.Widget {
	return func(gtx layout.Context) layout.Dimensions {
		if code == message.None {
			return layout.Dimensions{}
		}
		return layout.Inset{Top: unit.Dp(8), Bottom: unit.Dp(8)}.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
			return layout.Flex{Alignment: layout.Middle}.Layout(gtx,
				layout.Flexed(1, func(gtx layout.Context) layout.Dimensions {
					label := material.Body1(th, code.String())
					label.Color = noticeColor
					return label.Layout(gtx)
				}),
				layout.Rigid(func(gtx layout.Context) layout.Dimensions {
					return material.Button(th, dismiss, "OK").Layout(gtx)
				}),
			)
		})
	}
}

func spacer(dp unit.Dp) layout.FlexChild {
	return layout.Rigid(layout.Spacer{Width: dp, Height: dp}.Layout)
}

func (ui *UI) layoutTasks(gtx layout.Context) layout.Dimensions {
	s := ui.list.State()
	filter := ui.list.Filter()
	return layout.Flex{Axis: layout.Vertical}.Layout(gtx,
		layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			return material.H5(theme, s.Filtering.Label.String()).Layout(gtx)
		}),
		spacer(8),
		layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			return layout.Flex{}.Layout(gtx,
				layout.Rigid(filterBtn(theme, &ui.filterAll, message.LabelAll, filter == task.FilterAll)),
				spacer(8),
				layout.Rigid(filterBtn(theme, &ui.filterActive, message.LabelActive, filter == task.FilterActive)),
				spacer(8),
				layout.Rigid(filterBtn(theme, &ui.filterCompleted, message.LabelCompleted, filter == task.FilterCompleted)),
				layout.Flexed(1, layout.Spacer{}.Layout),
				layout.Rigid(material.Button(theme, &ui.refreshBtn, "Refresh").Layout),
				spacer(8),
				layout.Rigid(material.Button(theme, &ui.clearBtn, "Clear completed").Layout),
				spacer(8),
				layout.Rigid(material.Button(theme, &ui.addBtn, "Add task").Layout),
			)
		}),
		layout.Rigid(notice(theme, s.UserMessage, &ui.dismissBtn)),
		spacer(8),
		layout.Flexed(1, func(gtx layout.Context) layout.Dimensions {
			if s.IsLoading && len(s.Items) == 0 {
				return material.Body1(theme, "Loading...").Layout(gtx)
			}
			if s.Empty {
				label := material.Body1(theme, s.Filtering.NoTasksLabel.String())
				label.Color = dimColor
				return label.Layout(gtx)
			}
			return material.List(theme, &ui.taskList).Layout(gtx, len(s.Items), func(gtx layout.Context, i int) layout.Dimensions {
				return ui.layoutTaskRow(gtx, s.Items[i])
			})
		}),
	)
}

func (ui *UI) layoutTaskRow(gtx layout.Context, t task.Task) layout.Dimensions {
	row := ui.row(t.ID)
	row.check.Value = t.Completed
	return layout.Inset{Bottom: unit.Dp(4)}.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
		return layout.Flex{Alignment: layout.Middle}.Layout(gtx,
			layout.Rigid(material.CheckBox(theme, &row.check, "").Layout),
			spacer(8),
			layout.Flexed(1, func(gtx layout.Context) layout.Dimensions {
				return material.Clickable(gtx, &row.open, func(gtx layout.Context) layout.Dimensions {
					label := material.Body1(theme, t.TitleForList())
					if t.Completed {
						label.Color = dimColor
					} else {
						label.Font.Weight = font.Bold
					}
					return label.Layout(gtx)
				})
			}),
		)
	})
}

func (ui *UI) layoutDetail(gtx layout.Context) layout.Dimensions {
	s := ui.detail.State()
	children := []layout.FlexChild{
		layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			return material.H5(theme, "Task Details").Layout(gtx)
		}),
		layout.Rigid(notice(theme, s.UserMessage, &ui.detailDismiss)),
		spacer(8),
	}
	switch {
	case s.IsLoading:
		children = append(children, layout.Rigid(material.Body1(theme, "Loading...").Layout))
	case s.Task != nil:
		t := *s.Task
		ui.detailCheck.Value = t.Completed
		children = append(children,
			layout.Rigid(func(gtx layout.Context) layout.Dimensions {
				return layout.Flex{Alignment: layout.Middle}.Layout(gtx,
					layout.Rigid(material.CheckBox(theme, &ui.detailCheck, "").Layout),
					spacer(8),
					layout.Flexed(1, func(gtx layout.Context) layout.Dimensions {
						label := material.H6(theme, t.Title)
						return label.Layout(gtx)
					}),
				)
			}),
			spacer(8),
			layout.Rigid(material.Body1(theme, t.Description).Layout),
			spacer(16),
			layout.Rigid(func(gtx layout.Context) layout.Dimensions {
				return layout.Flex{}.Layout(gtx,
					layout.Rigid(material.Button(theme, &ui.editBtn, "Edit").Layout),
					spacer(8),
					layout.Rigid(material.Button(theme, &ui.detailRefresh, "Refresh").Layout),
					spacer(8),
					layout.Rigid(func(gtx layout.Context) layout.Dimensions {
						btn := material.Button(theme, &ui.deleteBtn, "Delete")
						btn.Background = deleteColor
						return btn.Layout(gtx)
					}),
				)
			}),
		)
	}
	return layout.Flex{Axis: layout.Vertical}.Layout(gtx, children...)
}

func (ui *UI) layoutEdit(gtx layout.Context) layout.Dimensions {
	s := ui.edit.State()
	title := "Edit Task"
	if ui.edit.IsNew() {
		title = "New Task"
	}
	if s.IsLoading {
		return material.Body1(theme, "Loading...").Layout(gtx)
	}
	return layout.Flex{Axis: layout.Vertical}.Layout(gtx,
		layout.Rigid(material.H5(theme, title).Layout),
		layout.Rigid(notice(theme, s.UserMessage, &ui.editDismiss)),
		spacer(8),
		layout.Rigid(material.Editor(theme, &ui.titleEditor, "Title").Layout),
		spacer(16),
		layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			gtx.Constraints.Min.Y = gtx.Dp(unit.Dp(120))
			return material.Editor(theme, &ui.descriptionEditor, "Enter your task here.").Layout(gtx)
		}),
		spacer(16),
		layout.Rigid(material.Button(theme, &ui.saveBtn, "Save").Layout),
	)
}

func (ui *UI) layoutStatistics(gtx layout.Context) layout.Dimensions {
	s := ui.stats.State()
	body := func(gtx layout.Context) layout.Dimensions {
		switch s.Status {
		case statistics.StatusLoading:
			return material.Body1(theme, "Loading...").Layout(gtx)
		case statistics.StatusError:
			label := material.Body1(theme, s.UserMessage.String())
			label.Color = noticeColor
			return label.Layout(gtx)
		case statistics.StatusEmpty:
			label := material.Body1(theme, message.NoTasksAll.String())
			label.Color = dimColor
			return label.Layout(gtx)
		}
		return layout.Flex{Axis: layout.Vertical}.Layout(gtx,
			layout.Rigid(material.Body1(theme, fmt.Sprintf("Active tasks: %.1f%%", s.Data.ActivePercent)).Layout),
			layout.Rigid(material.Body1(theme, fmt.Sprintf("Completed tasks: %.1f%%", s.Data.CompletedPercent)).Layout),
		)
	}
	return layout.Flex{Axis: layout.Vertical}.Layout(gtx,
		layout.Rigid(material.H5(theme, "Statistics").Layout),
		spacer(16),
		layout.Rigid(body),
		spacer(16),
		layout.Rigid(material.Button(theme, &ui.statsRefresh, "Refresh").Layout),
	)
}
