package solicitudes

// Storage keys are content-addressed by input hash, so identical uploads and
// re-renders of the same statement land on the same objects.

func InputKey(sha string) string {
	return "inputs/" + sha + ".pdf"
}

func OutputKey(sha string, r Resultado) string {
	return "outputs/" + sha + "." + r.Ext()
}
