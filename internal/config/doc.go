// Package config loads the declarative boardswarmd configuration document.
//
// The document lists the devices the broker knows about (their console,
// uploader and mode-step slots) and the providers that should be started
// to fill those slots. It is read once at startup; there is no hot reload.
//
// # Shape
//
//	server:
//	  host: "::1"
//	  port: 50051
//	logging:
//	  level: "info"
//	  format: "json"
//	  output: "stdout"
//	providers:
//	  - name: "udev"
//	    type: "udev"
//	    parameters: {}
//	devices:
//	  - name: "my-board"
//	    consoles:
//	      - name: "console"
//	        match: {usb_id: "1234"}
//	        parameters: {baud: 115200}
//	    uploaders:
//	      - name: "dfu"
//	        match: {usb_id: "0483:df11"}
//	    modes:
//	      - name: "off"
//	        sequence:
//	          - match: {pdu_port: "1"}
//	            parameters: {state: "off"}
//	      - name: "on"
//	        depends: "off"
//	        sequence:
//	          - match: {pdu_port: "1"}
//	            parameters: {state: "on"}
//	            stabilisation: "2s"
//
// Provider-specific parameter schemas are not this package's concern:
// they are kept verbatim as a loosely-typed tree (map[string]any) on
// ProviderConfig.Parameters — the parser only needs to know enough to
// find the kind and the name. The built-in "fake" provider type ignores
// them.
package config
