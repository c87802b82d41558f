package Controllers

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"DentaDesk/Models"

	"github.com/360EntSecGroup-Skylar/excelize"
	"github.com/gin-gonic/gin"
)

func ExportInstallmentLedger(c *gin.Context) {
	var input struct {
		DateFrom string `json:"date_from"`
		DateTo   string `json:"date_to"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, err)
		return
	}

	var payments []Models.InstallmentPayment

	if input.DateFrom != "" && input.DateTo != "" {
		if err := Models.DB.Model(&Models.InstallmentPayment{}).
			Where("due_date BETWEEN ? AND ?", input.DateFrom, input.DateTo).
			Order("due_date").
			Find(&payments).Error; err != nil {
			c.JSON(http.StatusBadRequest, err)
			return
		}
	} else {
		if err := Models.DB.Model(&Models.InstallmentPayment{}).Order("due_date").Find(&payments).Error; err != nil {
			c.JSON(http.StatusBadRequest, err)
			return
		}
	}

	planPatients := map[uint]string{}
	for index := range payments {
		if _, ok := planPatients[payments[index].InstallmentPlanID]; ok {
			continue
		}
		var plan Models.InstallmentPlan
		if err := Models.DB.First(&plan, payments[index].InstallmentPlanID).Error; err != nil {
			continue
		}
		var patient Models.Patient
		Models.DB.First(&patient, plan.PatientID)
		planPatients[plan.ID] = patient.Name
	}

	headers := map[string]string{
		"A1": "Patient",
		"B1": "Plan",
		"C1": "Installment",
		"D1": "Amount",
		"E1": "Due Date",
		"F1": "Payment Date",
		"G1": "Status",
		"H1": "Method",
	}
	file := excelize.NewFile()
	sheet := "Ledger"
	file.NewSheet(sheet)
	file.DeleteSheet("Sheet1")
	for k, v := range headers {
		file.SetCellValue(sheet, k, v)
	}

	today := time.Now().Format(Models.DateLayout)
	for i := 0; i < len(payments); i++ {
		appendRowLedger(sheet, file, i, payments, planPatients, today)
	}
	var filename string = fmt.Sprintf("./Ledger.xlsx")
	if err := file.SaveAs(filename); err != nil {
		log.Println(err)
	}
	c.File(filename)
}

func appendRowLedger(sheet string, file *excelize.File, index int, rows []Models.InstallmentPayment, planPatients map[uint]string, today string) (fileWriter *excelize.File) {
	rowCount := index + 2
	status := rows[index].Status
	if rows[index].IsOverdue(today) {
		status = Models.PaymentOverdue
	}
	file.SetCellValue(sheet, fmt.Sprintf("A%v", rowCount), planPatients[rows[index].InstallmentPlanID])
	file.SetCellValue(sheet, fmt.Sprintf("B%v", rowCount), rows[index].InstallmentPlanID)
	file.SetCellValue(sheet, fmt.Sprintf("C%v", rowCount), rows[index].InstallmentNumber)
	file.SetCellValue(sheet, fmt.Sprintf("D%v", rowCount), rows[index].Amount.StringFixed(2))
	file.SetCellValue(sheet, fmt.Sprintf("E%v", rowCount), rows[index].DueDate)
	file.SetCellValue(sheet, fmt.Sprintf("F%v", rowCount), rows[index].PaymentDate)
	file.SetCellValue(sheet, fmt.Sprintf("G%v", rowCount), status)
	file.SetCellValue(sheet, fmt.Sprintf("H%v", rowCount), rows[index].PaymentMethod)
	return file
}

func ExportTreatmentBalances(c *gin.Context) {
	var treatments []Models.Treatment
	if err := Models.DB.Model(&Models.Treatment{}).Order("id").Find(&treatments).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	patientNames := map[uint]string{}
	for index := range treatments {
		if _, ok := patientNames[treatments[index].PatientID]; ok {
			continue
		}
		var patient Models.Patient
		Models.DB.First(&patient, treatments[index].PatientID)
		patientNames[treatments[index].PatientID] = patient.Name
	}

	headers := map[string]string{
		"A1": "Patient",
		"B1": "Treatment",
		"C1": "Total Price",
		"D1": "Paid",
		"E1": "Pending Balance",
		"F1": "Sessions",
		"G1": "Progress %",
		"H1": "Status",
	}
	file := excelize.NewFile()
	sheet := "Treatments"
	file.NewSheet(sheet)
	file.DeleteSheet("Sheet1")
	for k, v := range headers {
		file.SetCellValue(sheet, k, v)
	}

	for i := 0; i < len(treatments); i++ {
		rowCount := i + 2
		t := treatments[i]
		file.SetCellValue(sheet, fmt.Sprintf("A%v", rowCount), patientNames[t.PatientID])
		file.SetCellValue(sheet, fmt.Sprintf("B%v", rowCount), t.TreatmentType)
		file.SetCellValue(sheet, fmt.Sprintf("C%v", rowCount), t.TotalPrice.StringFixed(2))
		file.SetCellValue(sheet, fmt.Sprintf("D%v", rowCount), t.AmountPaid.StringFixed(2))
		file.SetCellValue(sheet, fmt.Sprintf("E%v", rowCount), t.PendingBalance().StringFixed(2))
		file.SetCellValue(sheet, fmt.Sprintf("F%v", rowCount), fmt.Sprintf("%v/%v", t.CompletedSessions, t.TotalSessions))
		file.SetCellValue(sheet, fmt.Sprintf("G%v", rowCount), t.ProgressPercentage())
		file.SetCellValue(sheet, fmt.Sprintf("H%v", rowCount), t.Status)
	}
	var filename string = fmt.Sprintf("./Treatments.xlsx")
	if err := file.SaveAs(filename); err != nil {
		log.Println(err)
	}
	c.File(filename)
}
