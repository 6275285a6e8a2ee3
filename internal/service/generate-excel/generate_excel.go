package generate_excel

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/Rainbow-Platypus/projet-facturation-clients-script/internal/service/billing"
	"github.com/Rainbow-Platypus/projet-facturation-clients-script/internal/storage"
)

const (
	summarySheet   = "Facturation"
	equipmentSheet = "Équipements"
)

type GenerateExcelStorage interface {
	ListClientsWithEquipment(ctx context.Context) ([]*storage.ClientWithEquipment, error)
}

type SettingsProvider interface {
	Get(ctx context.Context) (*storage.Settings, error)
}

type GenerateExcelService struct {
	storage  GenerateExcelStorage
	settings SettingsProvider
}

func NewGenerateService(storage GenerateExcelStorage, settings SettingsProvider) *GenerateExcelService {
	return &GenerateExcelService{storage: storage, settings: settings}
}

// GenerateExcel builds the billing workbook: one summary row per client with
// a totals row, and the equipment inventory behind it on a second sheet.
func (g *GenerateExcelService) GenerateExcel(ctx context.Context) ([]byte, error) {
	clients, err := g.storage.ListClientsWithEquipment(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch clients: %w", err)
	}

	st, err := g.settings.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch settings: %w", err)
	}

	dashboard := billing.Summarize(clients, st.PricePerEquipment)

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(equipmentSheet); err != nil {
		return nil, err
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Bold: true},
		Fill:   excelize.Fill{Type: "pattern", Color: []string{"E0E0E0"}, Pattern: 1},
		Border: []excelize.Border{{Type: "bottom", Color: "000000", Style: 2}},
	})
	if err != nil {
		return nil, err
	}

	// summary
	writeHeader(f, summarySheet, headerStyle,
		"Client", "ID", "Total Équipements", "Équipements Facturables", "% Facturable", "Facturation (€)")

	for i, c := range dashboard.Clients {
		row := i + 2
		f.SetCellValue(summarySheet, cellName(1, row), c.Name)
		f.SetCellValue(summarySheet, cellName(2, row), c.ID)
		f.SetCellValue(summarySheet, cellName(3, row), c.TotalEquipment)
		f.SetCellValue(summarySheet, cellName(4, row), c.BillableEquipment)
		f.SetCellValue(summarySheet, cellName(5, row), c.BillablePercentage)
		f.SetCellValue(summarySheet, cellName(6, row), c.TotalBilling.InexactFloat64())
	}

	totalRow := len(dashboard.Clients) + 2
	f.SetCellValue(summarySheet, cellName(1, totalRow), "Total")
	f.SetCellValue(summarySheet, cellName(3, totalRow), dashboard.TotalEquipment)
	f.SetCellValue(summarySheet, cellName(4, totalRow), dashboard.TotalBillableEquipment)
	f.SetCellValue(summarySheet, cellName(5, totalRow),
		billing.BillablePercent(dashboard.TotalEquipment, dashboard.TotalBillableEquipment))
	f.SetCellValue(summarySheet, cellName(6, totalRow), dashboard.TotalRevenue.InexactFloat64())
	f.SetCellStyle(summarySheet, cellName(1, totalRow), cellName(6, totalRow), headerStyle)

	f.SetCellValue(summarySheet, cellName(8, 1), "Prix par équipement (€)")
	f.SetCellValue(summarySheet, cellName(9, 1), st.PricePerEquipment.InexactFloat64())

	// inventory
	writeHeader(f, equipmentSheet, headerStyle, "Client", "ID", "Nom", "Catégorie", "Facturable")

	row := 2
	for _, c := range clients {
		for _, eq := range c.Equipment {
			f.SetCellValue(equipmentSheet, cellName(1, row), c.Name)
			f.SetCellValue(equipmentSheet, cellName(2, row), eq.ID)
			f.SetCellValue(equipmentSheet, cellName(3, row), eq.Name)
			f.SetCellValue(equipmentSheet, cellName(4, row), eq.Category)
			f.SetCellValue(equipmentSheet, cellName(5, row), yesNo(eq.IsBillable))
			row++
		}
	}

	for _, sheet := range []string{summarySheet, equipmentSheet} {
		f.SetPanes(sheet, &excelize.Panes{
			Freeze:      true,
			YSplit:      1,
			TopLeftCell: "A2",
		})
		f.SetColWidth(sheet, "A", "F", 22)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func writeHeader(f *excelize.File, sheet string, style int, names ...string) {
	for i, name := range names {
		f.SetCellValue(sheet, cellName(i+1, 1), name)
	}
	f.SetCellStyle(sheet, "A1", cellName(len(names), 1), style)
}

func cellName(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}

func yesNo(v bool) string {
	if v {
		return "Oui"
	}
	return "Non"
}
