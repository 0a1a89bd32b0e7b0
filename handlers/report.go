package handlers

import (
	"fmt"
	"net/http"
	"regexp"

	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"

	"github.com/Ricardo-1112/waterbar-reservation/database/dbhelper"
	"github.com/Ricardo-1112/waterbar-reservation/timeutil"
	"github.com/Ricardo-1112/waterbar-reservation/utils"
)

// AdminOrdersToday lists today's non-cancelled orders for the bar staff.
func AdminOrdersToday(w http.ResponseWriter, r *http.Request) {
	rows, err := dbhelper.ListDayOrders(timeutil.Day(0))
	if err != nil {
		logrus.WithError(err).Error("failed to list today's orders")
		utils.RespondError(w, http.StatusInternalServerError, "failed to list orders")
		return
	}
	if rows == nil {
		rows = []dbhelper.DayOrderRow{}
	}
	utils.RespondJSON(w, http.StatusOK, rows)
}

func DailyReport(w http.ResponseWriter, r *http.Request) {
	respondReport(w, dbhelper.DailyReport)
}

func WeeklyReport(w http.ResponseWriter, r *http.Request) {
	respondReport(w, dbhelper.WeeklyReport)
}

func MonthlyReport(w http.ResponseWriter, r *http.Request) {
	respondReport(w, dbhelper.MonthlyReport)
}

func respondReport(w http.ResponseWriter, query func() ([]dbhelper.PeriodReport, error)) {
	rows, err := query()
	if err != nil {
		logrus.WithError(err).Error("report query failed")
		utils.RespondError(w, http.StatusInternalServerError, "report failed")
		return
	}
	if rows == nil {
		rows = []dbhelper.PeriodReport{}
	}
	utils.RespondJSON(w, http.StatusOK, rows)
}

var dayParam = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// ExcelReport streams one day's per-product sales as an .xlsx attachment.
// Without a ?date= parameter it exports today.
func ExcelReport(w http.ResponseWriter, r *http.Request) {
	day := r.URL.Query().Get("date")
	if day == "" {
		day = timeutil.Day(0)
	} else if !dayParam.MatchString(day) {
		utils.RespondError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}

	rows, err := dbhelper.DayProductReport(day)
	if err != nil {
		logrus.WithError(err).Error("export query failed")
		utils.RespondError(w, http.StatusInternalServerError, "export failed")
		return
	}

	workbook := excelize.NewFile()
	defer workbook.Close()

	const sheet = "DailyReport"
	workbook.SetSheetName("Sheet1", sheet)
	workbook.SetColWidth(sheet, "A", "A", 15)
	workbook.SetColWidth(sheet, "B", "B", 25)
	workbook.SetColWidth(sheet, "C", "D", 14)
	workbook.SetSheetRow(sheet, "A1", &[]interface{}{"Date", "Product", "Cups", "Amount"})

	var totalCups int
	var totalAmount float64
	for i, row := range rows {
		cell := fmt.Sprintf("A%d", i+2)
		workbook.SetSheetRow(sheet, cell, &[]interface{}{day, row.ProductName, row.Cups, row.Amount})
		totalCups += row.Cups
		totalAmount += row.Amount
	}
	totalCell := fmt.Sprintf("A%d", len(rows)+3)
	workbook.SetSheetRow(sheet, totalCell, &[]interface{}{"", "Total", totalCups, totalAmount})

	w.Header().Set("Content-Type",
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf(`attachment; filename="waterbar-report-%s.xlsx"`, day))
	if err := workbook.Write(w); err != nil {
		logrus.WithError(err).Error("failed to stream workbook")
	}
}
