package handler

import (
	"net/http"

	"github.com/duckytan/DotCircle/internal/utils"
)

// RootHandler affiche toutes les routes disponibles de l'API
func RootHandler(w http.ResponseWriter, r *http.Request) {
	routes := map[string]interface{}{
		"name":    "DotCircle API",
		"version": "1.0.0",
		"status":  "running",
		"routes": map[string]interface{}{
			"auth": []map[string]string{
				{"method": "POST", "path": "/auth/login", "description": "Amorce de session (création au premier passage)"},
				{"method": "POST", "path": "/auth/logout", "description": "Déconnexion utilisateur"},
			},
			"packages": []map[string]string{
				{"method": "GET", "path": "/packages", "description": "Paquets actifs triés par exposition"},
				{"method": "GET", "path": "/packages/{id}", "description": "Détail d'un paquet"},
				{"method": "POST", "path": "/packages", "description": "Publier un paquet"},
				{"method": "GET", "path": "/packages/mine", "description": "Mes paquets publiés"},
				{"method": "POST", "path": "/packages/{id}/help", "description": "Réclamer une place d'entraide"},
				{"method": "GET", "path": "/packages/{id}/helpers", "description": "Entraides d'un paquet"},
				{"method": "POST", "path": "/packages/{id}/cancel", "description": "Annuler un paquet"},
				{"method": "POST", "path": "/packages/{id}/adjust", "description": "Corriger le compteur d'entraides"},
				{"method": "POST", "path": "/packages/{id}/contract/fulfill", "description": "Honorer son contrat de réciprocité"},
			},
			"credit": []map[string]string{
				{"method": "GET", "path": "/credit/history", "description": "Historique de crédit"},
				{"method": "GET", "path": "/credit/rules", "description": "Grille des niveaux et motifs"},
			},
			"users": []map[string]string{
				{"method": "GET", "path": "/users/me", "description": "Profil et tâche du jour"},
				{"method": "GET", "path": "/users/me/today-task", "description": "Tâche d'entraide du jour"},
				{"method": "PUT", "path": "/users/me/settings", "description": "Préférences utilisateur"},
				{"method": "POST", "path": "/users/me/avatar", "description": "Téléversement d'avatar"},
			},
			"leaderboard": []map[string]string{
				{"method": "GET", "path": "/leaderboard/{type}", "description": "Classement (helper/credit/active/contributor)"},
			},
			"admin": []map[string]string{
				{"method": "GET", "path": "/admin/packages/pending", "description": "Paquets en attente de modération"},
				{"method": "POST", "path": "/admin/packages/{id}/review", "description": "Approuver ou rejeter un paquet"},
				{"method": "POST", "path": "/admin/credit/adjust", "description": "Appliquer un motif de crédit"},
			},
			"health": []map[string]string{
				{"method": "GET", "path": "/health", "description": "État du serveur"},
			},
		},
	}

	utils.JSON(w, http.StatusOK, routes)
}
