package service

import "strings"

// Query types returned by the classifier.
const (
	ConsultaVentas     = "sales"
	ConsultaInventario = "inventory"
	ConsultaAmbiental  = "environmental"
	ConsultaSedes      = "locations"
	ConsultaUsuarios   = "users"
	ConsultaGeneral    = "general"
)

// ReglaClasificacion maps a query type to the keywords that select it.
type ReglaClasificacion struct {
	Tipo          string
	PalabrasClave []string
}

// Clasificador assigns a query type with an ordered keyword table. The first
// rule with a matching keyword wins; no match yields ConsultaGeneral.
type Clasificador struct {
	reglas []ReglaClasificacion
}

func NewClasificador(reglas []ReglaClasificacion) *Clasificador {
	return &Clasificador{reglas: reglas}
}

// ReglasPorDefecto is the rule table used by the assistant, in priority order.
func ReglasPorDefecto() []ReglaClasificacion {
	return []ReglaClasificacion{
		{Tipo: ConsultaVentas, PalabrasClave: []string{"venta", "vendido", "ingreso", "dinero", "precio"}},
		{Tipo: ConsultaInventario, PalabrasClave: []string{"stock", "inventario", "producto", "cantidad"}},
		{Tipo: ConsultaAmbiental, PalabrasClave: []string{"temperatura", "humedad", "ambiente", "clima"}},
		{Tipo: ConsultaSedes, PalabrasClave: []string{"sede", "tienda", "ubicación", "sucursal"}},
		{Tipo: ConsultaUsuarios, PalabrasClave: []string{"usuario", "empleado", "staff", "personal"}},
	}
}

func (c *Clasificador) Clasificar(texto string) string {
	t := strings.ToLower(texto)
	for _, r := range c.reglas {
		if contieneAlguna(t, r.PalabrasClave) {
			return r.Tipo
		}
	}
	return ConsultaGeneral
}

func contieneAlguna(texto string, palabras []string) bool {
	for _, p := range palabras {
		if strings.Contains(texto, p) {
			return true
		}
	}
	return false
}
