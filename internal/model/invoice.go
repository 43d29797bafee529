package model

// AutoDebit values for InvoiceRecord.AutoDebit.
const (
	AutoDebitYes = "yes"
	AutoDebitNo  = "no"
)

// Injection is one generating unit's contribution inside the SCEE
// (net-metering) block.
type Injection struct {
	UC                 string   `json:"uc" yaml:"uc"`
	QuantKWh           *float64 `json:"quant_kwh" yaml:"quant_kwh"`
	UnitPriceWithTaxes *float64 `json:"preco_unit_com_tributos" yaml:"preco_unit_com_tributos"`
	Total              *float64 `json:"tarifa_unitaria" yaml:"tarifa_unitaria"`
}

// InvoiceRecord is the assembled extraction output for one invoice.
// JSON field names follow the Equatorial wire format. A nil pointer means
// the field could not be located in the document; it is never defaulted
// to zero unless the source text states zero.
type InvoiceRecord struct {
	ConsumerUnit         *string     `json:"unidade_consumidora" yaml:"unidade_consumidora"`
	TotalDue             *float64    `json:"total_a_pagar" yaml:"total_a_pagar"`
	DueDate              *string     `json:"data_vencimento" yaml:"data_vencimento"`
	PreviousReadingDate  *string     `json:"data_leitura_anterior" yaml:"data_leitura_anterior"`
	CurrentReadingDate   *string     `json:"data_leitura_atual" yaml:"data_leitura_atual"`
	NextReadingDate      *string     `json:"data_proxima_leitura" yaml:"data_proxima_leitura"`
	IssueDate            *string     `json:"data_emissao" yaml:"data_emissao"`
	PresentationDate     *string     `json:"apresentacao" yaml:"apresentacao"`
	ReferenceMonth       *string     `json:"mes_ano_referencia" yaml:"mes_ano_referencia"`
	PreviousReading      *int        `json:"leitura_anterior" yaml:"leitura_anterior"`
	CurrentReading       *int        `json:"leitura_atual" yaml:"leitura_atual"`
	GrossTariffBenefit   *float64    `json:"beneficio_tarifario_bruto" yaml:"beneficio_tarifario_bruto"`
	NetTariffBenefit     *float64    `json:"beneficio_tarifario_liquido" yaml:"beneficio_tarifario_liquido"`
	ICMS                 *float64    `json:"icms" yaml:"icms"`
	PISPasep             *float64    `json:"pis_pasep" yaml:"pis_pasep"`
	COFINS               *float64    `json:"cofins" yaml:"cofins"`
	AutoDebit            string      `json:"fatura_debito_automatico" yaml:"fatura_debito_automatico"`
	CreditReceived       *float64    `json:"credito_recebido" yaml:"credito_recebido"`
	KWhBalance           *float64    `json:"saldo_kwh_total" yaml:"saldo_kwh_total"`
	ExcessReceived       *float64    `json:"excedente_recebido" yaml:"excedente_recebido"`
	GenerationCycle      *string     `json:"geracao_ciclo" yaml:"geracao_ciclo"`
	GeneratorUnit        *string     `json:"uc_geradora" yaml:"uc_geradora"`
	GeneratorProduction  *float64    `json:"uc_geradora_producao" yaml:"uc_geradora_producao"`
	AllocationUnit       *string     `json:"cadastro_rateio_geracao_uc" yaml:"cadastro_rateio_geracao_uc"`
	AllocationPercent    *string     `json:"cadastro_rateio_geracao_percentual" yaml:"cadastro_rateio_geracao_percentual"`
	TariffWithoutTaxes   *float64    `json:"valor_tarifa_unitaria_sem_tributos" yaml:"valor_tarifa_unitaria_sem_tributos"`
	Injections           []Injection `json:"injecoes_scee" yaml:"injecoes_scee"`
	ConsumptionQty       *float64    `json:"consumo_scee_quant" yaml:"consumo_scee_quant"`
	ConsumptionUnitPrice *float64    `json:"consumo_scee_preco_unit_com_tributos" yaml:"consumo_scee_preco_unit_com_tributos"`
	ConsumptionTotal     *float64    `json:"consumo_scee_tarifa_unitaria" yaml:"consumo_scee_tarifa_unitaria"`
	HistoricalAverage    *int        `json:"media" yaml:"media"`
	ClientNotices        *string     `json:"informacoes_para_o_cliente" yaml:"informacoes_para_o_cliente"`
	Observations         *string     `json:"observacoes" yaml:"observacoes"`
}

// Float returns a pointer to v.
func Float(v float64) *float64 { return &v }

// Int returns a pointer to v.
func Int(v int) *int { return &v }

// String returns a pointer to v.
func String(v string) *string { return &v }
